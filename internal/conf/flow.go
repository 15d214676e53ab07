package conf

import (
	"fmt"
	"time"
)

// Flow controls the server's per-origin flow table lifecycle. Zero values
// reproduce the base behavior: a flow lives for as long as the connection
// does and the table has no capacity limit.
type Flow struct {
	MaxFlows    int           `yaml:"max_flows"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

func (f *Flow) setDefaults() {
	// 0 already means "unbounded" / "no idle eviction"; nothing to fill in.
}

func (f *Flow) validate() []error {
	var errs []error
	if f.MaxFlows < 0 {
		errs = append(errs, fmt.Errorf("flow.max_flows must be >= 0, got %d", f.MaxFlows))
	}
	if f.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("flow.idle_timeout must be >= 0, got %s", f.IdleTimeout))
	}
	return errs
}
