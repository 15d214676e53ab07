// Package client implements the client-side forwarder: it listens for UDP
// datagrams from local senders, tags each with its origin, and tunnels them
// to the server over a reconnecting link connection.
package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"udptunnel/internal/conf"
	"udptunnel/internal/flog"
	"udptunnel/internal/transport"
)

// Run listens for UDP datagrams on cfg.FromPort and tunnels them to the
// server at the configured transport address, reconnecting automatically on
// failure, until ctx is cancelled.
func Run(ctx context.Context, cfg *conf.Conf) error {
	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{Port: cfg.FromPort})
	if err != nil {
		return fmt.Errorf("client: listen udp on %d: %w", cfg.FromPort, err)
	}
	defer udpConn.Close()
	go func() {
		<-ctx.Done()
		udpConn.Close()
	}()

	serverAddr := fmt.Sprintf("%s:%d", cfg.ToHost, cfg.ToPort)
	flog.Infof("client forwarding udp:%d -> %s (%s)", cfg.FromPort, serverAddr, cfg.Transport.Protocol)

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		stream, err := transport.Dial(ctx, &cfg.Transport, serverAddr)
		if err != nil {
			flog.Warnf("client: dial %s failed: %v", serverAddr, err)
			if !sleepBackoff(ctx, attempt) {
				return nil
			}
			continue
		}

		flog.Infof("client: connected to %s", serverAddr)
		runSession(ctx, stream, udpConn, cfg)
		attempt = 0
	}
}

// sleepBackoff waits an exponentially growing, capped interval before the
// next dial attempt, returning false if ctx is cancelled first.
func sleepBackoff(ctx context.Context, attempt int) bool {
	d := time.Duration(1<<uint(min(attempt, 6))) * 200 * time.Millisecond
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
