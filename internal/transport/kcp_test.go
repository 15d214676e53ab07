package transport

import (
	"testing"

	"udptunnel/internal/conf"
)

func TestBlockCryptNullReturnsNil(t *testing.T) {
	cfg := &conf.KCP{Block_: "none"}
	b, err := blockCrypt(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != nil {
		t.Fatal("expected nil BlockCrypt for block=none")
	}
}

func TestBlockCryptAES(t *testing.T) {
	cfg := &conf.KCP{Block_: "aes", Key: "passphrase"}
	cfg.Block = conf.TrimKey(conf.DeriveKey(cfg.Key), cfg.Block_)
	b, err := blockCrypt(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b == nil {
		t.Fatal("expected a non-nil BlockCrypt for block=aes")
	}
}

func TestBlockCryptUnsupportedName(t *testing.T) {
	cfg := &conf.KCP{Block_: "rot13", Key: "x"}
	cfg.Block = []byte("0123456789abcdef")
	if _, err := blockCrypt(cfg); err == nil {
		t.Fatal("expected error for unsupported block cipher name")
	}
}

// TestBlockCryptConstructsEveryValidBlock guards against conf.ValidBlocks
// listing a cipher name this file has no case for, which would otherwise
// pass configuration validation and only fail once a KCP connection is
// dialed.
func TestBlockCryptConstructsEveryValidBlock(t *testing.T) {
	for _, block := range conf.ValidBlocks {
		if conf.IsNullBlock(block) {
			continue
		}
		cfg := &conf.KCP{Block_: block, Key: "passphrase"}
		cfg.Block = conf.TrimKey(conf.DeriveKey(cfg.Key), block)
		if _, err := blockCrypt(cfg); err != nil {
			t.Errorf("blockCrypt has no working case for ValidBlocks entry %q: %v", block, err)
		}
	}
}
