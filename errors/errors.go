package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse  Phase = "parse"  // textual IR parsing
	PhaseVerify Phase = "verify" // structural IR verification
	PhaseBuild  Phase = "build"  // IR construction
	PhaseOpt    Phase = "opt"    // optimization passes
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax       Kind = "syntax"
	KindUnknownIdent Kind = "unknown_ident"
	KindDuplicate    Kind = "duplicate"
	KindTypeMismatch Kind = "type_mismatch"
	KindInvalidCFG   Kind = "invalid_cfg"
	KindUseBeforeDef Kind = "use_before_def"
	KindUnsupported  Kind = "unsupported"
	KindInvalidInput Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Fn     string // enclosing function, if known
	Block  string // enclosing basic block, if known
	Line   int    // source line for parse errors, 0 if unknown
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Fn != "" {
		b.WriteString(" in ")
		b.WriteString(e.Fn)
		if e.Block != "" {
			b.WriteByte('.')
			b.WriteString(e.Block)
		}
	}

	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
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

// Fn sets the enclosing function name
func (b *Builder) Fn(name string) *Builder {
	b.err.Fn = name
	return b
}

// Block sets the enclosing block name
func (b *Builder) Block(name string) *Builder {
	b.err.Block = name
	return b
}

// Line sets the source line
func (b *Builder) Line(n int) *Builder {
	b.err.Line = n
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

// Syntax creates a parse syntax error at the given line
func Syntax(line int, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Line:   line,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// UnknownIdent creates an unknown identifier error
func UnknownIdent(phase Phase, line int, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownIdent,
		Line:   line,
		Detail: fmt.Sprintf("unknown identifier %s", name),
	}
}

// Duplicate creates a duplicate definition error
func Duplicate(phase Phase, line int, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Line:   line,
		Detail: fmt.Sprintf("duplicate definition of %s", name),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, fn, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Fn:     fn,
		Detail: detail,
	}
}

// InvalidCFG creates a malformed control-flow error
func InvalidCFG(fn, block, detail string) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindInvalidCFG,
		Fn:     fn,
		Block:  block,
		Detail: detail,
	}
}

// UseBeforeDef creates a def-before-use violation error
func UseBeforeDef(fn, block, name string) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindUseBeforeDef,
		Fn:     fn,
		Block:  block,
		Detail: fmt.Sprintf("%s used before definition", name),
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
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
