package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Class is the failure taxonomy surfaced to callers of the execution boundary.
type Class string

const (
	ClassParse         Class = "ParseError"
	ClassCompile       Class = "CompileError"
	ClassConfiguration Class = "ConfigurationError"
	ClassAuthorization Class = "AuthorizationError"
	ClassTransport     Class = "TransportError"
	ClassDevice        Class = "DeviceError"
	ClassData          Class = "DataError"
)

// Phase indicates where in the dispatch pipeline the error occurred
type Phase string

const (
	PhaseParse     Phase = "parse"     // program text to Program
	PhaseConfigure Phase = "configure" // settings, secrets, tokens
	PhaseCompile   Phase = "compile"   // validation, quilc, rewriting, translation
	PhaseEngage    Phase = "engage"    // reservation lookup
	PhaseSubmit    Phase = "submit"    // network round trip to the backend
	PhaseDecode    Phase = "decode"    // raw backend data to registers
	PhaseRead      Phase = "read"      // per-region data extraction
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax        Kind = "syntax"
	KindUnsupported   Kind = "unsupported"
	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindArchitecture  Kind = "architecture"
	KindMissing       Kind = "missing"
	KindCredentials   Kind = "credentials"
	KindUnauthorized  Kind = "unauthorized"
	KindNoReservation Kind = "no_reservation"
	KindUnreachable   Kind = "unreachable"
	KindProtocol      Kind = "protocol"
	KindExecution     Kind = "execution"
	KindTypeMismatch  Kind = "type_mismatch"
	KindShape         Kind = "shape"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value  any
	Cause  error
	Class  Class
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Class != "" {
		b.WriteString(string(e.Class))
		b.WriteString(": ")
	}

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
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

// Is reports whether target matches this error. A target with an empty Kind
// matches every error of the same Class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Class != "" && t.Class != e.Class {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return t.Class != "" || t.Kind != ""
}

// Class targets for errors.Is.
var (
	ErrParse         = &Error{Class: ClassParse}
	ErrCompile       = &Error{Class: ClassCompile}
	ErrConfiguration = &Error{Class: ClassConfiguration}
	ErrAuthorization = &Error{Class: ClassAuthorization}
	ErrTransport     = &Error{Class: ClassTransport}
	ErrDevice        = &Error{Class: ClassDevice}
	ErrData          = &Error{Class: ClassData}
)

// ClassOf returns the Class of the first *Error in err's chain, or "" if none.
func ClassOf(err error) Class {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Class
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(class Class, phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Class: class,
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
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

// Convenience constructors, one per class

// Syntax creates a parse error at the given source line
func Syntax(line int, detail string, args ...any) *Error {
	return &Error{
		Class:  ClassParse,
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Path:   []string{fmt.Sprintf("line %d", line)},
		Detail: fmt.Sprintf(detail, args...),
		Value:  line,
	}
}

// ParseFailed wraps a failure to parse program text
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Class:  ClassParse,
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Compile creates a compile error
func Compile(kind Kind, detail string, cause error) *Error {
	return &Error{
		Class:  ClassCompile,
		Phase:  PhaseCompile,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Unsupported creates a compile error for a construct the target cannot run
func Unsupported(what string) *Error {
	return &Error{
		Class:  ClassCompile,
		Phase:  PhaseCompile,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Configuration creates a configuration error
func Configuration(kind Kind, detail string, cause error) *Error {
	return &Error{
		Class:  ClassConfiguration,
		Phase:  PhaseConfigure,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Unauthorized creates an authorization error for a rejected request
func Unauthorized(phase Phase, detail string, cause error) *Error {
	return &Error{
		Class:  ClassAuthorization,
		Phase:  phase,
		Kind:   KindUnauthorized,
		Detail: detail,
		Cause:  cause,
	}
}

// NoReservation creates an authorization error for a device without an active reservation
func NoReservation(processorID string, cause error) *Error {
	return &Error{
		Class:  ClassAuthorization,
		Phase:  PhaseEngage,
		Kind:   KindNoReservation,
		Path:   []string{processorID},
		Detail: fmt.Sprintf("no active reservation for %s", processorID),
		Cause:  cause,
	}
}

// Unreachable creates a transport error for a service that could not be reached
func Unreachable(phase Phase, endpoint string, cause error) *Error {
	return &Error{
		Class:  ClassTransport,
		Phase:  phase,
		Kind:   KindUnreachable,
		Detail: fmt.Sprintf("could not communicate with %s", endpoint),
		Cause:  cause,
	}
}

// Protocol creates a transport error for a malformed or unexpected response
func Protocol(phase Phase, detail string, cause error) *Error {
	return &Error{
		Class:  ClassTransport,
		Phase:  phase,
		Kind:   KindProtocol,
		Detail: detail,
		Cause:  cause,
	}
}

// Device creates an error reported by the backend while running the program
func Device(detail string, cause error) *Error {
	return &Error{
		Class:  ClassDevice,
		Phase:  PhaseSubmit,
		Kind:   KindExecution,
		Detail: detail,
		Cause:  cause,
	}
}

// Data creates a read-out error for a region that cannot be encoded
func Data(kind Kind, region, detail string) *Error {
	return &Error{
		Class:  ClassData,
		Phase:  PhaseRead,
		Kind:   kind,
		Path:   []string{region},
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(class Class, phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Class:  class,
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
