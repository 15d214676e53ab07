package conf

import "fmt"

// Log controls the verbosity of internal/flog.
type Log struct {
	Level string `yaml:"level"`
}

func (l *Log) setDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

func (l *Log) validate() []error {
	switch l.Level {
	case "debug", "info", "warn", "error", "none":
		return nil
	default:
		return []error{fmt.Errorf("log.level must be one of debug/info/warn/error/none, got %q", l.Level)}
	}
}
