package server

import (
	"context"
	"fmt"
	"net"

	"udptunnel/internal/conf"
	"udptunnel/internal/flog"
	"udptunnel/internal/transport"
)

// Run accepts link connections on loopback port cfg.FromPort and forwards
// each one's UDP flows to cfg.ToHost:cfg.ToPort, until ctx is cancelled. The
// link listener binds 127.0.0.1 only; it is not meant to be reachable
// directly from other hosts without an operator-managed reverse proxy or
// port forward in front of it.
func Run(ctx context.Context, cfg *conf.Conf) error {
	dest := &net.UDPAddr{IP: net.ParseIP(cfg.ToHost), Port: cfg.ToPort}
	if dest.IP == nil {
		ips, err := net.LookupIP(cfg.ToHost)
		if err != nil || len(ips) == 0 {
			return fmt.Errorf("server: resolve to_host %q: %w", cfg.ToHost, err)
		}
		dest.IP = ips[0]
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.FromPort)
	ln, err := transport.Listen(&cfg.Transport, addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	defer ln.Close()

	flog.Infof("server listening on %s (%s) -> %s", addr, cfg.Transport.Protocol, dest)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("server: accept: %w", err)
			}
		}
		go handleConn(ctx, conn, dest, cfg)
	}
}
