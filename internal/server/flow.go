// Package server implements the server-side forwarder: it accepts link
// connections, decodes frames, and maintains a per-origin ephemeral UDP
// socket table so replies from the downstream destination are routed back
// to the correct client-side origin.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"udptunnel/internal/codec"
	"udptunnel/internal/conf"
	"udptunnel/internal/flog"

	"github.com/patrickmn/go-cache"
)

// Flow is one origin's ephemeral UDP socket and its decoupled send queue: a
// slow downstream send must never stall framing of other flows.
type Flow struct {
	Origin codec.Endpoint
	conn   *net.UDPConn
	sendCh chan []byte
	cancel context.CancelFunc
}

// FlowTable is owned exclusively by the connection's dispatcher goroutine:
// every GetOrCreate call happens on that one goroutine, so the table itself
// needs no lock of its own. go-cache's internal mutex only ever has to
// arbitrate between that single writer and its own background janitor
// goroutine evicting idle entries, which is a safe, intentional race.
type FlowTable struct {
	cache                *cache.Cache
	dest                 *net.UDPAddr
	disablePortRemapping bool
	maxFlows             int
	writer               *codec.Writer
}

// NewFlowTable builds a flow table that forwards downstream to dest and
// writes replies back over writer. idleTimeout of 0 disables idle eviction
// (flows then live exactly as long as the connection, the base spec
// behavior); maxFlows of 0 leaves the table uncapped.
func NewFlowTable(dest *net.UDPAddr, writer *codec.Writer, flowCfg conf.Flow, disablePortRemapping bool) *FlowTable {
	expiration := cache.NoExpiration
	cleanup := cache.NoExpiration
	if flowCfg.IdleTimeout > 0 {
		expiration = flowCfg.IdleTimeout
		cleanup = flowCfg.IdleTimeout / 2
		if cleanup < time.Second {
			cleanup = time.Second
		}
	}
	ft := &FlowTable{
		cache:                cache.New(expiration, cleanup),
		dest:                 dest,
		disablePortRemapping: disablePortRemapping,
		maxFlows:             flowCfg.MaxFlows,
		writer:               writer,
	}
	ft.cache.OnEvicted(func(key string, v interface{}) {
		f := v.(*Flow)
		flog.Debugf("flow %s idle-evicted", key)
		f.close()
	})
	return ft
}

// GetOrCreate returns the existing flow for origin, touching its expiration,
// or binds a new ephemeral socket and starts its reader/writer tasks. It
// must only be called from the dispatcher goroutine.
func (ft *FlowTable) GetOrCreate(ctx context.Context, origin codec.Endpoint) (*Flow, error) {
	key := origin.String()
	if v, ok := ft.cache.Get(key); ok {
		f := v.(*Flow)
		ft.touch(key, f)
		return f, nil
	}

	// Collect entries that expired since the janitor last ran, so their
	// sockets are closed before a replacement flow is stored under the key.
	ft.cache.DeleteExpired()

	if ft.maxFlows > 0 && ft.cache.ItemCount() >= ft.maxFlows {
		return nil, fmt.Errorf("flow table at capacity (%d flows)", ft.maxFlows)
	}

	conn, err := ft.bind(origin)
	if err != nil {
		return nil, fmt.Errorf("bind ephemeral socket for %s: %w", key, err)
	}

	flowCtx, cancel := context.WithCancel(ctx)
	f := &Flow{
		Origin: origin,
		conn:   conn,
		sendCh: make(chan []byte, 256),
		cancel: cancel,
	}
	ft.touch(key, f)
	go f.sendLoop(flowCtx, ft.dest)
	go f.recvLoop(flowCtx, ft.writer)
	flog.Debugf("flow created for origin %s -> %s", key, ft.dest)
	return f, nil
}

func (ft *FlowTable) touch(key string, f *Flow) {
	d := cache.DefaultExpiration
	ft.cache.Set(key, f, d)
}

// bind opens the ephemeral socket for a new flow. When disablePortRemapping
// is set, the server instead binds to the configured downstream port so the
// destination sees a reply source port equal to its own destination port —
// needed by UDP protocols that check the two match; if that port is already
// taken by another flow, the bind fails and the triggering frame is
// dropped, since only one flow at a time can own that fixed port.
func (ft *FlowTable) bind(origin codec.Endpoint) (*net.UDPConn, error) {
	laddr := &net.UDPAddr{Port: 0}
	if ft.disablePortRemapping {
		laddr = &net.UDPAddr{Port: ft.dest.Port}
	}
	return net.ListenUDP("udp", laddr)
}

// Close releases every flow's socket and stops its tasks. Call once the
// owning connection is torn down.
func (ft *FlowTable) Close() {
	for key, item := range ft.cache.Items() {
		f := item.Object.(*Flow)
		f.close()
		ft.cache.Delete(key)
	}
}

func (f *Flow) close() {
	f.cancel()
	f.conn.Close()
}

// sendLoop drains queued outbound payloads to the downstream destination. A
// send error is logged and otherwise ignored — it must never remove the flow
// entry, since the origin may still send more traffic or the destination
// may recover.
func (f *Flow) sendLoop(ctx context.Context, dest *net.UDPAddr) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-f.sendCh:
			if _, err := f.conn.WriteToUDP(payload, dest); err != nil {
				flog.Debugf("flow %s: udp send to %s failed: %v", f.Origin, dest, err)
			}
		}
	}
}

// recvLoop reads downstream replies and tags them with the flow's origin
// before writing them back over the shared link writer.
func (f *Flow) recvLoop(ctx context.Context, writer *codec.Writer) {
	buf := make([]byte, codec.MaxUDPPayload)
	for {
		n, _, err := f.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				flog.Debugf("flow %s: udp receive ended: %v", f.Origin, err)
			}
			return
		}
		if err := writer.WriteFrame(f.Origin, buf[:n]); err != nil {
			flog.Debugf("flow %s: write reply frame failed: %v", f.Origin, err)
			return
		}
	}
}

// Dispatch hands payload to the flow's decoupled send queue, dropping it
// (and logging) if the flow is currently backed up rather than blocking the
// dispatcher and stalling every other origin.
func (f *Flow) Dispatch(payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	select {
	case f.sendCh <- cp:
	default:
		flog.Debugf("flow %s: send queue full, dropping datagram", f.Origin)
	}
}
