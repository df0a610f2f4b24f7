package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in bridging the error occurred
type Phase string

const (
	PhaseConfig   Phase = "config"   // namespace and type registration
	PhaseResolve  Phase = "resolve"  // type and member lookup
	PhaseConvert  Phase = "convert"  // value <-> native conversion
	PhaseInvoke   Phase = "invoke"   // native member invocation
	PhaseAsync    Phase = "async"    // pending results
	PhaseState    Phase = "state"    // misuse of immutable or completed objects
	PhaseEnvelope Phase = "envelope" // call envelope decoding
)

// Kind categorizes the error
type Kind string

const (
	KindUnregistered     Kind = "unregistered"
	KindConflict         Kind = "conflict"
	KindTypeNotFound     Kind = "type_not_found"
	KindMemberNotFound   Kind = "member_not_found"
	KindTypeMismatch     Kind = "type_mismatch"
	KindUnknownHandle    Kind = "unknown_handle"
	KindUnsupportedShape Kind = "unsupported_shape"
	KindInvocation       Kind = "invocation"
	KindImmutable        Kind = "immutable"
	KindWrongKind        Kind = "wrong_kind"
	KindAlreadyCompleted Kind = "already_completed"
	KindAlreadyChained   Kind = "already_chained"
	KindCancelled        Kind = "cancelled"
	KindPending          Kind = "pending"
	KindInvalidAction    Kind = "invalid_action"
	KindInvalidInput     Kind = "invalid_input"
	KindNotFound         Kind = "not_found"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	Virtual string
	Member  string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	typed := e.GoType != "" || e.Virtual != ""
	if typed {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.Virtual != "":
			b.WriteString("type ")
			b.WriteString(e.Virtual)
			b.WriteString(" (")
			b.WriteString(e.GoType)
			b.WriteByte(')')
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("type ")
			b.WriteString(e.Virtual)
		}
		if e.Member != "" {
			b.WriteString(" member ")
			b.WriteString(e.Member)
		}
	}

	if e.Detail != "" {
		if typed {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the native type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Virtual sets the type name as seen by the calling environment
func (b *Builder) Virtual(t string) *Builder {
	b.err.Virtual = t
	return b
}

// Member sets the member name
func (b *Builder) Member(name string) *Builder {
	b.err.Member = name
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

// Sentinels for errors.Is matching
var (
	ErrImmutable        = &Error{Phase: PhaseState, Kind: KindImmutable}
	ErrAlreadyCompleted = &Error{Phase: PhaseState, Kind: KindAlreadyCompleted}
	ErrAlreadyChained   = &Error{Phase: PhaseState, Kind: KindAlreadyChained}
	ErrCancelled        = &Error{Phase: PhaseAsync, Kind: KindCancelled}
	ErrInvocation       = &Error{Phase: PhaseInvoke, Kind: KindInvocation}
)

// Unregistered creates an error for a namespace or package with no mapping
func Unregistered(what, name string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindUnregistered,
		Detail: fmt.Sprintf("%s %q is not registered", what, name),
	}
}

// Conflict creates an error for a mapping that collides with an existing one
func Conflict(what, name, existing string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindConflict,
		Detail: fmt.Sprintf("%s %q already mapped to %q", what, name, existing),
	}
}

// TypeNotFound creates an error for a native type missing from the registry
func TypeNotFound(goType string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindTypeNotFound,
		GoType: goType,
		Detail: "type is not registered",
	}
}

// MemberNotFound creates an error naming the type and the member
func MemberNotFound(goType, member string, arity int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMemberNotFound,
		GoType: goType,
		Member: member,
		Detail: fmt.Sprintf("no exported member accepting %d argument(s)", arity),
	}
}

// TypeMismatch creates a conversion error naming source kind and target type
func TypeMismatch(path []string, source, target string) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: target,
		Detail: fmt.Sprintf("could not convert %s to expected type %s", source, target),
	}
}

// UnknownHandle creates an error for a handle with no live object
func UnknownHandle(goType string, handle uint64) *Error {
	return &Error{
		Phase:  PhaseConvert,
		Kind:   KindUnknownHandle,
		GoType: goType,
		Value:  handle,
		Detail: fmt.Sprintf("proxied object with handle %d was not found", handle),
	}
}

// UnsupportedShape creates an error for a listener parameter that cannot be synthesized
func UnsupportedShape(goType, detail string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnsupportedShape,
		GoType: goType,
		Detail: detail,
	}
}

// Invocation wraps a failure raised by the native target
func Invocation(goType, member string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindInvocation,
		GoType: goType,
		Member: member,
		Cause:  cause,
	}
}

// IsInvocation reports whether err is a failure raised by the native target
// rather than a malformed call.
func IsInvocation(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Phase == PhaseInvoke && e.Kind == KindInvocation {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// InvalidAction creates an error for an unknown envelope action tag
func InvalidAction(action string) *Error {
	return &Error{
		Phase:  PhaseEnvelope,
		Kind:   KindInvalidAction,
		Detail: "Invalid action: " + action,
		Value:  action,
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

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
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
