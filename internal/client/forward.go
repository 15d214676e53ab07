package client

import (
	"context"
	"net"
	"sync"
	"time"

	"udptunnel/internal/codec"
	"udptunnel/internal/conf"
	"udptunnel/internal/flog"
	"udptunnel/internal/transport"
)

const pingInterval = 15 * time.Second

// runSession drives one link connection's lifetime: the UDP-to-TCP task
// reads local datagrams and frames them onto the stream, the TCP-to-UDP task
// deframes replies and writes them back to their original sender, and a
// ticker sends periodic Pings so a half-open connection is detected without
// waiting for a write to fail. It returns once the stream closes for any
// reason.
func runSession(ctx context.Context, stream transport.Stream, udpConn *net.UDPConn, cfg *conf.Conf) {
	defer stream.Close()

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessionCtx.Done()
		stream.Close()
	}()

	writer := codec.NewWriter(stream)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		defer cancel()
		udpToTCP(sessionCtx, udpConn, writer)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		tcpToUDP(sessionCtx, stream, udpConn, writer, cfg.MaxFrameBody)
	}()
	go func() {
		defer wg.Done()
		pingLoop(sessionCtx, writer)
	}()
	wg.Wait()
}

// udpToTCP reads datagrams from local senders and tunnels each one tagged
// with its origin.
func udpToTCP(ctx context.Context, udpConn *net.UDPConn, writer *codec.Writer) {
	buf := make([]byte, codec.MaxUDPPayload)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		udpConn.SetReadDeadline(time.Now().Add(time.Second))
		n, addr, err := udpConn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			flog.Debugf("client: udp read error: %v", err)
			return
		}
		origin := codec.NewEndpoint(addr)
		if err := writer.WriteFrame(origin, buf[:n]); err != nil {
			flog.Debugf("client: write frame failed: %v", err)
			return
		}
	}
}

// tcpToUDP deframes replies from the server and writes each payload back to
// the sender identified by its tagged origin. A malformed body is logged
// and dropped without resynchronizing the stream, since the next frame's
// boundary is always known from the trusted length prefix.
func tcpToUDP(ctx context.Context, stream transport.Stream, udpConn *net.UDPConn, writer *codec.Writer, maxFrameBody int) {
	reader := codec.NewStreamReader(stream, maxFrameBody)
	err := reader.Run(func(body []byte) error {
		if codec.IsControlFrame(body) {
			return nil
		}
		origin, payload, err := codec.DecodeBody(body)
		if err != nil {
			flog.Debugf("client: dropping malformed reply frame: %v", err)
			return nil
		}
		if _, err := udpConn.WriteToUDP(payload, origin.UDPAddr()); err != nil {
			flog.Debugf("client: udp write to %s failed: %v", origin, err)
		}
		return nil
	})
	if err != nil {
		flog.Debugf("client: stream reader stopped: %v", err)
	}
}

// pingLoop sends a Ping on the shared writer lock every pingInterval so a
// half-open connection is detected without waiting for a data write to fail.
func pingLoop(ctx context.Context, writer *codec.Writer) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := writer.WriteControl(codec.ControlPing); err != nil {
				flog.Debugf("client: ping failed: %v", err)
				return
			}
		}
	}
}
