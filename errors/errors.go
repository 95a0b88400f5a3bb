package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInvoke    Phase = "invoke"    // crossing into the host
	PhaseDispatch  Phase = "dispatch"  // callback delivery
	PhaseChannel   Phase = "channel"   // frame reassembly
	PhaseListen    Phase = "listen"    // event subscription
	PhaseEmit      Phase = "emit"      // event publication
	PhaseResource  Phase = "resource"  // handle lifecycle
	PhaseTransport Phase = "transport" // wire encoding and connection state
	PhaseServe     Phase = "serve"     // host-side operation handling
	PhaseConfig    Phase = "config"    // shell configuration
)

// Kind categorizes the error
type Kind string

const (
	KindRejected         Kind = "rejected"
	KindInvalidEvent     Kind = "invalid_event"
	KindInvalidInput     Kind = "invalid_input"
	KindUnknownOperation Kind = "unknown_operation"
	KindUnknownCallback  Kind = "unknown_callback"
	KindUnknownResource  Kind = "unknown_resource"
	KindClosed           Kind = "closed"
	KindDecode           Kind = "decode"
	KindUnavailable      Kind = "unavailable"
	KindTimeout          Kind = "timeout"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Rejected wraps a host rejection for the given operation
func Rejected(op string, cause error) *Error {
	return &Error{
		Phase: PhaseInvoke,
		Kind:  KindRejected,
		Op:    op,
		Cause: cause,
	}
}

// InvalidEvent reports an event name outside the allowed grammar
func InvalidEvent(name string) *Error {
	return &Error{
		Phase:  PhaseListen,
		Kind:   KindInvalidEvent,
		Value:  name,
		Detail: fmt.Sprintf("event name %q must match [A-Za-z0-9/:_-]+", name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// UnknownOperation reports a dispatch against an unregistered operation
func UnknownOperation(op string) *Error {
	return &Error{
		Phase: PhaseServe,
		Kind:  KindUnknownOperation,
		Op:    op,
	}
}

// UnknownResource reports an operation against a retired or foreign rid
func UnknownResource(op string, rid uint32) *Error {
	return &Error{
		Phase:  PhaseResource,
		Kind:   KindUnknownResource,
		Op:     op,
		Detail: fmt.Sprintf("no live resource with rid %d", rid),
	}
}

// Closed reports an operation against a shut-down component
func Closed(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: detail,
	}
}

// Decode wraps a wire decoding failure
func Decode(phase Phase, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindDecode,
		Cause: cause,
	}
}

// Unavailable reports that no host bridge is reachable
func Unavailable(op string) *Error {
	return &Error{
		Phase: PhaseInvoke,
		Kind:  KindUnavailable,
		Op:    op,
		Detail: "no host bridge is available",
	}
}
