package transport

import (
	"context"
	"fmt"
	"net"

	"udptunnel/internal/conf"

	"github.com/quic-go/quic-go"
)

func quicConfig(cfg *conf.QUIC) *quic.Config {
	return &quic.Config{
		MaxIncomingStreams:             1,
		MaxIncomingUniStreams:          0,
		MaxIdleTimeout:                 cfg.IdleTimeout,
		InitialStreamReceiveWindow:     cfg.InitialStreamWindow,
		MaxStreamReceiveWindow:         cfg.MaxStreamWindow,
		InitialConnectionReceiveWindow: cfg.InitialConnWindow,
		MaxConnectionReceiveWindow:     cfg.MaxConnWindow,
	}
}

// quicStream adapts a *quic.Stream plus its owning *quic.Conn into a Stream
// whose Close tears down the whole connection — this protocol only ever
// opens exactly one stream per connection, so there is no reason to keep
// the connection alive after its single stream closes.
type quicStream struct {
	*quic.Stream
	conn *quic.Conn
}

func (s *quicStream) Close() error {
	err := s.Stream.Close()
	s.conn.CloseWithError(0, "close")
	return err
}

func dialQUIC(ctx context.Context, cfg *conf.QUIC, addr string) (Stream, error) {
	qConn, err := quic.DialAddr(ctx, addr, clientTLSConfig(cfg), quicConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("quic dial: %w", err)
	}
	stream, err := qConn.OpenStreamSync(ctx)
	if err != nil {
		qConn.CloseWithError(1, "open stream failed")
		return nil, fmt.Errorf("quic open stream: %w", err)
	}
	return &quicStream{Stream: stream, conn: qConn}, nil
}

type quicListener struct {
	ln *quic.Listener
}

func listenQUIC(cfg *conf.QUIC, addr string) (Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	tlsConf, err := serverTLSConfig(cfg)
	if err != nil {
		udpConn.Close()
		return nil, err
	}
	ln, err := quic.Listen(udpConn, tlsConf, quicConfig(cfg))
	if err != nil {
		udpConn.Close()
		return nil, err
	}
	return &quicListener{ln: ln}, nil
}

func (l *quicListener) Accept(ctx context.Context) (Stream, error) {
	qConn, err := l.ln.Accept(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := qConn.AcceptStream(ctx)
	if err != nil {
		qConn.CloseWithError(1, "accept stream failed")
		return nil, err
	}
	return &quicStream{Stream: stream, conn: qConn}, nil
}

func (l *quicListener) Close() error   { return l.ln.Close() }
func (l *quicListener) Addr() net.Addr { return l.ln.Addr() }
