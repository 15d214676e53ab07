// Package conf loads and validates the YAML configuration shared by the
// client and server roles, following the same unmarshal/defaults/validate
// three-phase pattern used throughout this codebase's predecessor: fill in
// defaults first, then collect every validation error into a single report
// instead of failing on the first one found. The role is checked before
// that and an invalid role is reported on its own.
package conf

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// Conf is the top-level configuration for either role.
type Conf struct {
	Role                 string    `yaml:"role"`
	FromPort             int       `yaml:"from_port"`
	ToHost               string    `yaml:"to_host"`
	ToPort               int       `yaml:"to_port"`
	DisablePortRemapping bool      `yaml:"disable_port_remapping"`
	Log                  Log       `yaml:"log"`
	Transport            Transport `yaml:"transport"`
	Flow                 Flow      `yaml:"flow"`
	MaxFrameBody         int       `yaml:"max_frame_body"`
}

// LoadFromFile reads, unmarshals, defaults, and validates a configuration
// file in one pass.
func LoadFromFile(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Conf
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	validRoles := []string{"client", "server"}
	if !slices.Contains(validRoles, c.Role) {
		return nil, fmt.Errorf("role must be 'client' or 'server', got %q", c.Role)
	}

	c.setDefaults()
	if err := c.validate(); err != nil {
		return &c, err
	}
	return &c, nil
}

func (c *Conf) setDefaults() {
	c.Log.setDefaults()
	c.Transport.setDefaults()
	c.Flow.setDefaults()
	if c.ToHost == "" {
		c.ToHost = "127.0.0.1"
	}
	if c.MaxFrameBody <= 0 {
		c.MaxFrameBody = 4 + 1 + 16 + 2 + 65507
	}
}

func (c *Conf) validate() error {
	var allErrors []error

	allErrors = append(allErrors, c.Log.validate()...)
	allErrors = append(allErrors, c.Transport.validate()...)
	allErrors = append(allErrors, c.Flow.validate()...)

	if c.FromPort <= 0 || c.FromPort > 65535 {
		allErrors = append(allErrors, fmt.Errorf("from_port must be in 1..65535, got %d", c.FromPort))
	}
	if c.ToPort <= 0 || c.ToPort > 65535 {
		allErrors = append(allErrors, fmt.Errorf("to_port must be in 1..65535, got %d", c.ToPort))
	}

	return writeErr(allErrors)
}

// Revalidate re-runs validation after a caller has mutated fields directly,
// e.g. to apply CLI flag overrides on top of a loaded file.
func (c *Conf) Revalidate() error {
	return c.validate()
}

func writeErr(allErrors []error) error {
	if len(allErrors) == 0 {
		return nil
	}
	var messages []string
	for _, err := range allErrors {
		messages = append(messages, err.Error())
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}
