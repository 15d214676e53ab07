package conf

import "fmt"

// KCP configures the KCP link transport. Block/Key select an optional
// pre-shared cipher derived from a passphrase, obscuring the session from
// casual inspection without adding any field to the tunnel frame itself.
type KCP struct {
	Key    string `yaml:"key"`
	Block_ string `yaml:"block"`
	Block  []byte `yaml:"-"`

	MTU     int `yaml:"mtu"`
	SndWnd  int `yaml:"snd_wnd"`
	RcvWnd  int `yaml:"rcv_wnd"`
	NoDelay int `yaml:"no_delay"`
	Resend  int `yaml:"resend"`
}

func (k *KCP) setDefaults() {
	if k.Block_ == "" {
		k.Block_ = "none"
	}
	if k.MTU == 0 {
		k.MTU = 1400
	}
	if k.SndWnd == 0 {
		k.SndWnd = 1024
	}
	if k.RcvWnd == 0 {
		k.RcvWnd = 1024
	}
	if k.NoDelay == 0 {
		k.NoDelay = 1
	}
	if k.Resend == 0 {
		k.Resend = 2
	}
}

func (k *KCP) validate() []error {
	var errs []error
	if err := ValidateBlockAndKey(k.Block_, k.Key); err != nil {
		errs = append(errs, fmt.Errorf("transport.kcp: %w", err))
	}
	if len(k.Key) > 0 {
		dkey := DeriveKey(k.Key)
		k.Block = TrimKey(dkey, k.Block_)
	}
	if k.MTU < 576 || k.MTU > 1500 {
		errs = append(errs, fmt.Errorf("transport.kcp.mtu must be between 576 and 1500, got %d", k.MTU))
	}
	return errs
}
