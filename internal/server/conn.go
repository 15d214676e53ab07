package server

import (
	"context"
	"net"

	"udptunnel/internal/codec"
	"udptunnel/internal/conf"
	"udptunnel/internal/flog"
	"udptunnel/internal/transport"
)

// handleConn owns one link connection end to end: it frames incoming bytes,
// dispatches each data frame to its origin's flow, and answers control
// frames on the same shared writer lock data frames use, so a Pong never
// reorders around in-flight data.
func handleConn(ctx context.Context, conn transport.Stream, dest *net.UDPAddr, cfg *conf.Conf) {
	defer conn.Close()

	writer := codec.NewWriter(conn)
	table := NewFlowTable(dest, writer, cfg.Flow, cfg.DisablePortRemapping)
	defer table.Close()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-connCtx.Done()
		conn.Close()
	}()

	reader := codec.NewStreamReader(conn, cfg.MaxFrameBody)
	err := reader.Run(func(body []byte) error {
		if codec.IsControlFrame(body) {
			return handleControl(writer, body[0])
		}
		origin, payload, err := codec.DecodeBody(body)
		if err != nil {
			// Malformed body: log and move on. The next header is always
			// unambiguous because frame boundaries come from the trusted
			// length prefix, never from body content.
			flog.Debugf("server: dropping malformed frame: %v", err)
			return nil
		}
		flow, err := table.GetOrCreate(connCtx, origin)
		if err != nil {
			flog.Warnf("server: %v", err)
			return nil
		}
		flow.Dispatch(payload)
		return nil
	})
	if err != nil {
		flog.Debugf("server: connection closed: %v", err)
	}
}

func handleControl(writer *codec.Writer, b byte) error {
	if b != codec.ControlPing {
		return nil
	}
	return writer.WriteControl(codec.ControlPong)
}
