package conf

import (
	"fmt"
	"time"
)

// QUIC configures the QUIC link transport. TLS is mandatory at the QUIC
// layer regardless of these settings; when no
// certificate is supplied the server generates a self-signed one at startup.
type QUIC struct {
	ALPN        string        `yaml:"alpn"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	CertFile    string        `yaml:"cert_file"`
	KeyFile     string        `yaml:"key_file"`

	InitialStreamWindow uint64 `yaml:"initial_stream_window"`
	MaxStreamWindow     uint64 `yaml:"max_stream_window"`
	InitialConnWindow   uint64 `yaml:"initial_conn_window"`
	MaxConnWindow       uint64 `yaml:"max_conn_window"`
}

func (q *QUIC) setDefaults() {
	if q.ALPN == "" {
		q.ALPN = "udptunnel"
	}
	if q.IdleTimeout == 0 {
		q.IdleTimeout = 30 * time.Second
	}
	if q.InitialStreamWindow == 0 {
		q.InitialStreamWindow = 4 * 1024 * 1024
	}
	if q.MaxStreamWindow == 0 {
		q.MaxStreamWindow = 8 * 1024 * 1024
	}
	if q.InitialConnWindow == 0 {
		q.InitialConnWindow = 8 * 1024 * 1024
	}
	if q.MaxConnWindow == 0 {
		q.MaxConnWindow = 16 * 1024 * 1024
	}
}

func (q *QUIC) validate() []error {
	var errs []error
	if q.IdleTimeout < time.Second || q.IdleTimeout > 5*time.Minute {
		errs = append(errs, fmt.Errorf("transport.quic.idle_timeout must be between 1s and 5m"))
	}
	if (q.CertFile == "") != (q.KeyFile == "") {
		errs = append(errs, fmt.Errorf("transport.quic: cert_file and key_file must both be set, or neither"))
	}
	return errs
}
