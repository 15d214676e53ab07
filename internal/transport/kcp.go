package transport

import (
	"context"
	"fmt"
	"net"

	"udptunnel/internal/conf"

	"github.com/xtaci/kcp-go/v5"
)

// blockCrypt builds the kcp-go BlockCrypt for cfg.Block_, mirroring the
// cipher family names conf.ValidBlocks already validates against.
func blockCrypt(cfg *conf.KCP) (kcp.BlockCrypt, error) {
	if conf.IsNullBlock(cfg.Block_) || len(cfg.Block) == 0 {
		return nil, nil
	}
	switch cfg.Block_ {
	case "aes", "aes-128", "aes-192":
		return kcp.NewAESBlockCrypt(cfg.Block)
	case "salsa20":
		return kcp.NewSalsa20BlockCrypt(cfg.Block)
	case "blowfish":
		return kcp.NewBlowfishBlockCrypt(cfg.Block)
	case "twofish":
		return kcp.NewTwofishBlockCrypt(cfg.Block)
	case "cast5":
		return kcp.NewCast5BlockCrypt(cfg.Block)
	case "3des":
		return kcp.NewTripleDESBlockCrypt(cfg.Block)
	case "tea":
		return kcp.NewTEABlockCrypt(cfg.Block)
	case "xtea":
		return kcp.NewXTEABlockCrypt(cfg.Block)
	case "xor":
		return kcp.NewSimpleXORBlockCrypt(cfg.Block)
	case "sm4":
		return kcp.NewSM4BlockCrypt(cfg.Block)
	default:
		return nil, fmt.Errorf("transport/kcp: unsupported block cipher %q", cfg.Block_)
	}
}

func applyTuning(s *kcp.UDPSession, cfg *conf.KCP) {
	s.SetMtu(cfg.MTU)
	s.SetWindowSize(cfg.SndWnd, cfg.RcvWnd)
	s.SetNoDelay(cfg.NoDelay, 10, cfg.Resend, 1)
	s.SetStreamMode(true)
}

func dialKCP(cfg *conf.KCP, addr string) (Stream, error) {
	block, err := blockCrypt(cfg)
	if err != nil {
		return nil, err
	}
	sess, err := kcp.DialWithOptions(addr, block, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("kcp dial: %w", err)
	}
	applyTuning(sess, cfg)
	return sess, nil
}

type kcpListener struct {
	ln  *kcp.Listener
	cfg *conf.KCP
}

func listenKCP(cfg *conf.KCP, addr string) (Listener, error) {
	block, err := blockCrypt(cfg)
	if err != nil {
		return nil, err
	}
	ln, err := kcp.ListenWithOptions(addr, block, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("kcp listen: %w", err)
	}
	return &kcpListener{ln: ln, cfg: cfg}, nil
}

func (l *kcpListener) Accept(ctx context.Context) (Stream, error) {
	type result struct {
		sess *kcp.UDPSession
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		sess, err := l.ln.AcceptKCP()
		ch <- result{sess, err}
	}()
	select {
	case <-ctx.Done():
		l.ln.Close()
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		applyTuning(r.sess, l.cfg)
		return r.sess, nil
	}
}

func (l *kcpListener) Close() error   { return l.ln.Close() }
func (l *kcpListener) Addr() net.Addr { return l.ln.Addr() }
