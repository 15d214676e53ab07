package conf

import "testing"

func TestDeriveKeyIsThirtyTwoBytes(t *testing.T) {
	if got := len(DeriveKey("test-passphrase")); got != 32 {
		t.Fatalf("DeriveKey length = %d, want 32", got)
	}
}

func TestDeriveKeySamePassphraseSameKey(t *testing.T) {
	a, b := DeriveKey("same-key"), DeriveKey("same-key")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("DeriveKey not deterministic at byte %d", i)
		}
	}
}

func TestDeriveKeyDifferentPassphraseDifferentKey(t *testing.T) {
	a, b := DeriveKey("key-a"), DeriveKey("key-b")
	for i := range a {
		if a[i] != b[i] {
			return
		}
	}
	t.Fatal("expected different passphrases to derive different keys")
}

func TestBlockKeySize(t *testing.T) {
	for block, want := range map[string]int{
		"aes": 0, "aes-128": 16, "aes-192": 24,
		"salsa20": 0, "cast5": 16, "3des": 24,
		"none": 0, "null": 0,
	} {
		if got := BlockKeySize(block); got != want {
			t.Errorf("BlockKeySize(%q) = %d, want %d", block, got, want)
		}
	}
	if got := BlockKeySize("invalid-cipher"); got != -1 {
		t.Errorf("BlockKeySize(unknown) = %d, want -1", got)
	}
}

// TestBlockKeySizeCoversValidBlocks guards against ValidBlocks drifting
// ahead of BlockKeySize: every name accepted by ValidateBlockAndKey must
// have a known key size, or validation would pass for a block TrimKey can't
// size correctly.
func TestBlockKeySizeCoversValidBlocks(t *testing.T) {
	for _, block := range ValidBlocks {
		if BlockKeySize(block) == -1 {
			t.Errorf("ValidBlocks contains %q but BlockKeySize does not recognize it", block)
		}
	}
}

func TestTrimKeyToFixedSize(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	trimmed := TrimKey(key, "aes-128")
	if len(trimmed) != 16 {
		t.Fatalf("TrimKey(aes-128) length = %d, want 16", len(trimmed))
	}
	for i := range trimmed {
		if trimmed[i] != byte(i) {
			t.Fatal("trimmed key should be a prefix of the derived key")
		}
	}
}

func TestTrimKeyKeepsFullSizeForZeroSizeCiphers(t *testing.T) {
	key := make([]byte, 32)
	if got := len(TrimKey(key, "aes")); got != 32 {
		t.Fatalf("TrimKey(aes) length = %d, want 32", got)
	}
}

func TestIsNullBlock(t *testing.T) {
	for block, want := range map[string]bool{"none": true, "null": true, "aes": false} {
		if got := IsNullBlock(block); got != want {
			t.Errorf("IsNullBlock(%q) = %v, want %v", block, got, want)
		}
	}
}

func TestValidateBlockAndKey(t *testing.T) {
	if err := ValidateBlockAndKey("aes", "my-key"); err != nil {
		t.Errorf("aes with key: unexpected error: %v", err)
	}
	if err := ValidateBlockAndKey("none", ""); err != nil {
		t.Errorf("none without key: unexpected error: %v", err)
	}
	if err := ValidateBlockAndKey("null", ""); err != nil {
		t.Errorf("null without key: unexpected error: %v", err)
	}
	if err := ValidateBlockAndKey("aes", ""); err == nil {
		t.Error("expected error for aes without a key")
	}
	if err := ValidateBlockAndKey("rc4", "key"); err == nil {
		t.Error("expected error for an unsupported block cipher name")
	}
}
