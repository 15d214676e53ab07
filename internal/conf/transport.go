package conf

import (
	"fmt"
	"slices"
)

// Transport selects and configures the link carrying the tunnel's byte
// stream between client and server.
type Transport struct {
	Protocol string `yaml:"protocol"`
	QUIC     *QUIC  `yaml:"quic"`
	KCP      *KCP   `yaml:"kcp"`
}

var validProtocols = []string{"tcp", "quic", "kcp"}

func (t *Transport) setDefaults() {
	if t.Protocol == "" {
		t.Protocol = "tcp"
	}
	switch t.Protocol {
	case "quic":
		if t.QUIC == nil {
			t.QUIC = &QUIC{}
		}
		t.QUIC.setDefaults()
	case "kcp":
		if t.KCP == nil {
			t.KCP = &KCP{}
		}
		t.KCP.setDefaults()
	}
}

func (t *Transport) validate() []error {
	var errs []error
	if !slices.Contains(validProtocols, t.Protocol) {
		errs = append(errs, fmt.Errorf("transport.protocol must be one of %v, got %q", validProtocols, t.Protocol))
		return errs
	}
	switch t.Protocol {
	case "quic":
		errs = append(errs, t.QUIC.validate()...)
	case "kcp":
		errs = append(errs, t.KCP.validate()...)
	}
	return errs
}
