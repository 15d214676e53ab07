// Package transport provides the pluggable link carrying the tunnel's byte
// stream between client and server. The codec and forwarders only ever see a
// Stream; they never know whether it is backed by TCP, QUIC, or KCP.
package transport

import (
	"context"
	"fmt"
	"io"
	"net"

	"udptunnel/internal/conf"
)

// Stream is an ordered, reliable, bidirectional byte pipe — the minimal
// abstraction the codec's StreamReader and Writer require.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}

// Listener accepts inbound connections and produces a Stream per connection.
type Listener interface {
	Accept(ctx context.Context) (Stream, error)
	Close() error
	Addr() net.Addr
}

// Dial opens a Stream to addr using the transport selected by cfg.Protocol.
func Dial(ctx context.Context, cfg *conf.Transport, addr string) (Stream, error) {
	switch cfg.Protocol {
	case "", "tcp":
		return dialTCP(ctx, addr)
	case "quic":
		return dialQUIC(ctx, cfg.QUIC, addr)
	case "kcp":
		return dialKCP(cfg.KCP, addr)
	default:
		return nil, fmt.Errorf("transport: unknown protocol %q", cfg.Protocol)
	}
}

// Listen starts accepting connections on addr using the transport selected
// by cfg.Protocol.
func Listen(cfg *conf.Transport, addr string) (Listener, error) {
	switch cfg.Protocol {
	case "", "tcp":
		return listenTCP(addr)
	case "quic":
		return listenQUIC(cfg.QUIC, addr)
	case "kcp":
		return listenKCP(cfg.KCP, addr)
	default:
		return nil, fmt.Errorf("transport: unknown protocol %q", cfg.Protocol)
	}
}
