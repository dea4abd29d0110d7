package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad       Phase = "load"       // command model ingestion
	PhaseClassify   Phase = "classify"   // parameter role assignment
	PhaseSynthesize Phase = "synthesize" // variant synthesis
	PhaseEmit       Phase = "emit"       // source rendering
	PhaseCall       Phase = "call"       // wrapper invocation
	PhaseDestroy    Phase = "destroy"    // owned handle destruction
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidModel      Kind = "invalid_model"
	KindUnrecognizedShape Kind = "unrecognized_shape"
	KindMissingTrait      Kind = "missing_trait"
	KindCallFailure       Kind = "call_failure"
	KindBufferGrowth      Kind = "buffer_growth"
	KindDestruction       Kind = "destruction"
	KindInvalidData       Kind = "invalid_data"
	KindNotFound          Kind = "not_found"
	KindAllocation        Kind = "allocation"
	KindUnsupported       Kind = "unsupported"
)

// Error is the structured error type used throughout the module
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Command string
	Param   string
	Detail  string
	Status  int32
	// HasStatus reports whether Status carries a raw API status code.
	HasStatus bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Command != "" {
		b.WriteString(" in ")
		b.WriteString(e.Command)
		if e.Param != "" {
			b.WriteByte('.')
			b.WriteString(e.Param)
		}
	}

	if e.HasStatus {
		fmt.Fprintf(&b, " (status %d)", e.Status)
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

// Is reports whether target matches this error.
// A zero Phase or Kind in target matches any value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	if t.Kind == "" || t.Kind == e.Kind {
		return true
	}
	// growth is reported to callers as a call failure
	return t.Kind == KindCallFailure && e.Kind == KindBufferGrowth
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

// Command sets the command name
func (b *Builder) Command(name string) *Builder {
	b.err.Command = name
	return b
}

// Param sets the parameter name
func (b *Builder) Param(name string) *Builder {
	b.err.Param = name
	return b
}

// Status sets the raw status code
func (b *Builder) Status(s int32) *Builder {
	b.err.Status = s
	b.err.HasStatus = true
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

// InvalidModel creates a command model validation error
func InvalidModel(detail string, args ...any) *Error {
	return New(PhaseLoad, KindInvalidModel).Detail(detail, args...).Build()
}

// UnrecognizedShape creates a synthesis error for a command whose
// parameters match no supported calling convention.
func UnrecognizedShape(command, param, detail string) *Error {
	return &Error{
		Phase:   PhaseSynthesize,
		Kind:    KindUnrecognizedShape,
		Command: command,
		Param:   param,
		Detail:  detail,
	}
}

// MissingTrait creates a synthesis error for a destroyable handle type
// that cannot be bound to a destroy command.
func MissingTrait(handle, destroy, detail string) *Error {
	return &Error{
		Phase:   PhaseSynthesize,
		Kind:    KindMissingTrait,
		Command: destroy,
		Param:   handle,
		Detail:  detail,
	}
}

// CallFailure creates an error for an underlying call reporting a
// non-success status.
func CallFailure(command string, status int32) *Error {
	return &Error{
		Phase:     PhaseCall,
		Kind:      KindCallFailure,
		Command:   command,
		Status:    status,
		HasStatus: true,
	}
}

// BufferGrowth creates an error for a two-call sequence whose output grew
// between the size query and the fill call.
func BufferGrowth(command string, status int32, capacity uint32) *Error {
	return &Error{
		Phase:     PhaseCall,
		Kind:      KindBufferGrowth,
		Command:   command,
		Status:    status,
		HasStatus: true,
		Detail:    fmt.Sprintf("output grew beyond queried capacity %d", capacity),
	}
}

// Destruction creates an error for a failed destroy call.
func Destruction(command string, status int32) *Error {
	return &Error{
		Phase:     PhaseDestroy,
		Kind:      KindDestruction,
		Command:   command,
		Status:    status,
		HasStatus: true,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, command, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidData,
		Command: command,
		Detail:  detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsCallFailure reports whether err is a CallFailure, including buffer
// growth failures.
func IsCallFailure(err error) bool {
	return stderrors.Is(err, &Error{Phase: PhaseCall, Kind: KindCallFailure})
}

// IsSynthesis reports whether err is a generation-time synthesis error.
func IsSynthesis(err error) bool {
	return stderrors.Is(err, &Error{Phase: PhaseSynthesize})
}

// StatusOf extracts the raw status carried by err, if any.
func StatusOf(err error) (int32, bool) {
	var e *Error
	if !stderrors.As(err, &e) || !e.HasStatus {
		return 0, false
	}
	return e.Status, true
}
