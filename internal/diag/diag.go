// Package diag provides the coupling runtime's logging wrapper: every line
// is prefixed with the emitting participant's name and rank, matching the
// diagnostic context a fatal abort needs. This wraps the standard log
// package rather than a structured-logging library.
package diag

import (
	"fmt"
	"log"
)

// Logger tags every emitted line with a participant name and rank.
type Logger struct {
	Participant string
	Rank        int
}

// New returns a Logger for the given participant/rank pair.
func New(participant string, rank int) *Logger {
	return &Logger{Participant: participant, Rank: rank}
}

func (l *Logger) prefix() string {
	return fmt.Sprintf("[%s/%d] ", l.Participant, l.Rank)
}

// Infof logs an informational line.
func (l *Logger) Infof(format string, args ...any) {
	log.Printf(l.prefix()+format, args...)
}

// Warnf logs a non-fatal warning, e.g. a NumericWarning from a
// non-converged implicit window.
func (l *Logger) Warnf(format string, args ...any) {
	log.Printf(l.prefix()+"WARN "+format, args...)
}

// Fatalf logs a fatal diagnostic and aborts the process — used for
// ConfigError/ProtocolError/TransportError/UsageError, the kinds that
// must abort rather than continue.
func (l *Logger) Fatalf(format string, args ...any) {
	log.Fatalf(l.prefix()+"FATAL "+format, args...)
}
