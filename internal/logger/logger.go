// Package logger provides verbose logging for postop.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace ingestion and each chat turn.
// Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// write serialises output so concurrent turns do not interleave lines.
func write(always bool, level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose || always {
		fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "DEBUG", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "INFO", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(false, "WARN", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "ERROR", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Scoped prefixes every message with a component name.
type Scoped struct {
	name string
}

// For returns a logger whose messages read "[LEVEL] name: message".
func For(name string) Scoped {
	return Scoped{name: name}
}

// Debug prints a scoped message if verbose mode is enabled.
func (s Scoped) Debug(format string, args ...any) {
	write(false, "DEBUG", s.name+": "+format, args...)
}

// Info prints a scoped message if verbose mode is enabled.
func (s Scoped) Info(format string, args ...any) {
	write(false, "INFO", s.name+": "+format, args...)
}

// Warn prints a scoped warning if verbose mode is enabled.
func (s Scoped) Warn(format string, args ...any) {
	write(false, "WARN", s.name+": "+format, args...)
}

// Error prints a scoped error regardless of verbose mode.
func (s Scoped) Error(format string, args ...any) {
	write(true, "ERROR", s.name+": "+format, args...)
}
