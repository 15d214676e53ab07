package conf

import "testing"

func TestTransportSetDefaultsTCP(t *testing.T) {
	tr := Transport{}
	tr.setDefaults()
	if tr.Protocol != "tcp" {
		t.Errorf("expected default protocol tcp, got %s", tr.Protocol)
	}
	if tr.QUIC != nil || tr.KCP != nil {
		t.Error("tcp protocol should not allocate quic/kcp sub-config")
	}
}

func TestTransportSetDefaultsQUIC(t *testing.T) {
	tr := Transport{Protocol: "quic"}
	tr.setDefaults()
	if tr.QUIC == nil {
		t.Fatal("expected quic sub-config to be initialized")
	}
	if tr.QUIC.ALPN != "udptunnel" {
		t.Errorf("expected ALPN=udptunnel, got %s", tr.QUIC.ALPN)
	}
}

func TestTransportSetDefaultsKCP(t *testing.T) {
	tr := Transport{Protocol: "kcp"}
	tr.setDefaults()
	if tr.KCP == nil {
		t.Fatal("expected kcp sub-config to be initialized")
	}
	if tr.KCP.Block_ != "none" {
		t.Errorf("expected block=none, got %s", tr.KCP.Block_)
	}
	if tr.KCP.MTU != 1400 {
		t.Errorf("expected default MTU=1400, got %d", tr.KCP.MTU)
	}
}

func TestTransportValidateInvalidProtocol(t *testing.T) {
	tr := Transport{Protocol: "websocket"}
	if errs := tr.validate(); len(errs) == 0 {
		t.Fatal("expected error for unsupported protocol")
	}
}

func TestTransportValidateQUICMissingKeyAndCert(t *testing.T) {
	tr := Transport{Protocol: "quic", QUIC: &QUIC{}}
	tr.QUIC.setDefaults()
	// QUIC no longer requires a pre-shared key; only cert/key pairing is checked.
	if errs := tr.validate(); len(errs) != 0 {
		t.Errorf("expected no errors for a self-signed default QUIC config, got %v", errs)
	}
}

func TestTransportValidateKCPBlockWithoutKey(t *testing.T) {
	tr := Transport{Protocol: "kcp", KCP: &KCP{Block_: "aes", Key: ""}}
	tr.KCP.setDefaults()
	tr.KCP.Block_ = "aes" // setDefaults only fills empty, re-assert intent
	errs := tr.validate()
	if len(errs) == 0 {
		t.Fatal("expected error for aes block without a key")
	}
}

func TestTransportValidateKCPValid(t *testing.T) {
	tr := Transport{Protocol: "kcp", KCP: &KCP{Block_: "aes", Key: "secret"}}
	tr.KCP.setDefaults()
	if errs := tr.validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}
