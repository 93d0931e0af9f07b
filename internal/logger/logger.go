// Package logger provides leveled logging for litequery.
// Warnings and errors are always printed to stderr. Info and debug
// messages (parsed queries, dispatched operations, migration steps)
// appear once verbose mode is enabled via the --verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int

// Levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case level name used as the line prefix.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name, case-insensitively, into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	mu     sync.RWMutex
	level            = LevelWarn
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the minimum level that is printed.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose switches between debug output and the warning-only default.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelWarn)
	}
}

// IsVerbose returns true if debug messages are printed.
func IsVerbose() bool {
	return GetLevel() <= LevelDebug
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l >= level {
		fmt.Fprintf(output, "["+l.String()+"] "+format+"\n", args...)
	}
}

// Debug prints a message at debug level.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info prints a message at info level.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warn prints a message at warning level.
func Warn(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Error prints a message at error level.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

// Timed logs the duration of an operation at debug level when the
// returned function is called.
//
//	defer logger.Timed("query get_user")()
func Timed(name string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", name, time.Since(start).Round(time.Microsecond))
	}
}
