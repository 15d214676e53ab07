// Package flog is a small asynchronous leveled logger. Log calls format and
// hand a line to a buffered channel drained by a single writer goroutine, so
// the hot forwarding path never blocks on stdout; when the channel is full a
// message is dropped and counted rather than applying backpressure.
package flog

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

type Level int

const None Level = -1
const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
)

var (
	minLevel = Info
	logCh    = make(chan string, 1024)
	dropped  atomic.Uint64
)

// Dropped returns the number of log messages dropped due to channel full.
func Dropped() uint64 { return dropped.Load() }

var levelStrings = [...]string{
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
	Fatal: "FATAL",
}

// SetLevel sets the minimum level that reaches the output and starts the
// drain goroutine. Passing None suppresses all logging. Every call with a
// level other than None starts another drain goroutine, so callers should
// call it exactly once at startup.
func SetLevel(l Level) {
	minLevel = l
	if l != None {
		go drain()
	}
}

func drain() {
	for msg := range logCh {
		fmt.Fprint(os.Stdout, msg)
	}
}

func logf(level Level, format string, args ...any) {
	if level < minLevel || minLevel == None {
		return
	}

	// Check channel capacity before formatting to avoid wasted allocations.
	if len(logCh) == cap(logCh) {
		dropped.Add(1)
		return
	}

	now := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("%s [%s] %s\n", now, levelStrings[level], fmt.Sprintf(format, args...))

	select {
	case logCh <- line:
	default:
		dropped.Add(1)
	}
}

func (l Level) String() string {
	if int(l) >= 0 && int(l) < len(levelStrings) {
		return levelStrings[l]
	}
	if l == None {
		return "None"
	}
	return "UNKNOWN"
}

// ParseLevel maps a configuration string (debug/info/warn/error/none) to a
// Level. An unrecognized string yields Info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warn":
		return Warn
	case "error":
		return Error
	case "none":
		return None
	default:
		return Info
	}
}

func Debugf(format string, args ...any) { logf(Debug, format, args...) }
func Infof(format string, args ...any)  { logf(Info, format, args...) }
func Warnf(format string, args ...any)  { logf(Warn, format, args...) }
func Errorf(format string, args ...any) { logf(Error, format, args...) }

// Fatalf logs at Fatal level, gives the drain goroutine a moment to flush,
// then exits the process with a non-zero status.
func Fatalf(format string, args ...any) {
	logf(Fatal, format, args...)
	time.Sleep(10 * time.Millisecond)
	os.Exit(1)
}

// Close shuts down the drain goroutine. Intended for tests; production
// processes exit via Fatalf or normal termination instead.
func Close() { close(logCh) }
