// Package errs defines the coupling runtime's error taxonomy. Fatal kinds
// (ConfigError, ProtocolError, TransportError, UsageError) abort the
// participant process with a diagnostic naming the participant, rank, and
// offending parameter. NumericWarning is non-fatal: execution continues and
// it never aborts. The coupling scheme reports a non-converged window
// through its log only; Advance does not return a NumericWarning.
package errs

import "github.com/pkg/errors"

// Kind discriminates the taxonomy the runtime defines: ConfigError, ProtocolError,
// TransportError, NumericWarning, UsageError.
type Kind int

const (
	ConfigErrorKind Kind = iota
	ProtocolErrorKind
	TransportErrorKind
	NumericWarningKind
	UsageErrorKind
)

func (k Kind) String() string {
	switch k {
	case ConfigErrorKind:
		return "ConfigError"
	case ProtocolErrorKind:
		return "ProtocolError"
	case TransportErrorKind:
		return "TransportError"
	case NumericWarningKind:
		return "NumericWarning"
	case UsageErrorKind:
		return "UsageError"
	default:
		return "UnknownError"
	}
}

// Fatal reports whether errors of this kind must abort the run. Only
// NumericWarning is non-fatal.
func (k Kind) Fatal() bool {
	return k != NumericWarningKind
}

// Diagnostic is a coupling-runtime error carrying the kind and the
// participant/rank/parameter context a fatal abort must carry.
type Diagnostic struct {
	Kind        Kind
	Participant string
	Rank        int
	Parameter   string
	cause       error
}

func (d *Diagnostic) Error() string {
	msg := d.Kind.String() + ": participant=" + d.Participant
	if d.Parameter != "" {
		msg += " param=" + d.Parameter
	}
	if d.cause != nil {
		msg += ": " + d.cause.Error()
	}
	return msg
}

// Unwrap exposes the wrapped cause to errors.Is/As/Unwrap.
func (d *Diagnostic) Unwrap() error { return d.cause }

// New builds a Diagnostic of the given kind, wrapping cause (which may be
// nil) with the stack trace github.com/pkg/errors attaches.
func New(kind Kind, participant string, rank int, parameter string, cause error) *Diagnostic {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &Diagnostic{Kind: kind, Participant: participant, Rank: rank, Parameter: parameter, cause: wrapped}
}

// Config builds a fatal ConfigError.
func Config(participant string, rank int, parameter string, cause error) *Diagnostic {
	return New(ConfigErrorKind, participant, rank, parameter, cause)
}

// Protocol builds a fatal ProtocolError — participants disagree on an
// expected message, indicating version or configuration skew.
func Protocol(participant string, rank int, parameter string, cause error) *Diagnostic {
	return New(ProtocolErrorKind, participant, rank, parameter, cause)
}

// Transport builds a fatal TransportError — any I/O failure. There is no
// retry: the peer is assumed gone.
func Transport(participant string, rank int, cause error) *Diagnostic {
	return New(TransportErrorKind, participant, rank, "", cause)
}

// Usage builds a fatal UsageError — the solver violated the API contract.
func Usage(participant string, rank int, parameter string, cause error) *Diagnostic {
	return New(UsageErrorKind, participant, rank, parameter, cause)
}

// Warning builds a non-fatal NumericWarning — recorded, execution continues.
func Warning(participant string, rank int, parameter string, cause error) *Diagnostic {
	return New(NumericWarningKind, participant, rank, parameter, cause)
}

// IsKind reports whether err is, or wraps, a Diagnostic of the given kind.
func IsKind(err error, kind Kind) bool {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Kind == kind
	}
	return false
}
