package error

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by their nature and by how the caller is
// expected to react to them.
type ErrorCategory int

const (
	// ErrCategoryUsage represents errors caused by invalid caller input:
	// a bad glob pattern, an unknown spec file format, missing arguments.
	ErrCategoryUsage ErrorCategory = iota

	// ErrCategoryIO represents failures opening, reading or writing files.
	ErrCategoryIO

	// ErrCategoryMalformed represents structurally broken input, such as a
	// FITS header without END or an OIFITS file without OI_TARGET.
	ErrCategoryMalformed

	// ErrCategoryIntegrity represents dangling foreign keys between OIFITS
	// tables that make an operation undefined (e.g. a record whose target
	// ID does not resolve during merge).
	ErrCategoryIntegrity
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUsage:
		return "usage"
	case ErrCategoryIO:
		return "io"
	case ErrCategoryMalformed:
		return "malformed"
	case ErrCategoryIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// Common error codes.
const (
	CodeMissingTarget   = "MISSING_OI_TARGET"
	CodeDanglingTarget  = "DANGLING_TARGET"
	CodeBadPattern      = "BAD_PATTERN"
	CodeBadSpec         = "BAD_FILTER_SPEC"
	CodeMalformedHeader = "MALFORMED_HEADER"
	CodeMalformedTable  = "MALFORMED_TABLE"
	CodeFileExists      = "FILE_EXISTS"
	CodeWriteFailed     = "WRITE_FAILED"
	CodeReadFailed      = "READ_FAILED"
	CodeNoInput         = "NO_INPUT"
	CodeBadConfig       = "BAD_CONFIG"
)

// OIError represents a structured error with context about where in the
// OIFITS processing pipeline it was raised.
type OIError struct {
	// Code is a unique identifier for this error type (e.g., "DANGLING_TARGET").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail locates the offending data, e.g. "OI_VIS2 #2 record 17".
	Detail string

	// Operation identifies the top-level operation, e.g. "Merge", "Read".
	Operation string

	// Component identifies the package where the error originated.
	Component string

	// Cause is the underlying error that triggered this error.
	Cause error

	// Stack contains the call stack where this error was created.
	Stack []uintptr
}

// New creates a new OIError with the specified category, code, and message.
func New(category ErrorCategory, code, message string) *OIError {
	return &OIError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Newf is New with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...any) *OIError {
	return &OIError{
		Code:     code,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with operation and component context.
// If err is already an *OIError it is enriched in place (only empty fields
// are filled) and returned.
func Wrap(err error, code, operation, component string) *OIError {
	if err == nil {
		return nil
	}

	if oiErr, ok := err.(*OIError); ok {
		if oiErr.Operation == "" {
			oiErr.Operation = operation
		}
		if oiErr.Component == "" {
			oiErr.Component = component
		}
		return oiErr
	}

	return &OIError{
		Code:      code,
		Category:  ErrCategoryIO,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// WithDetail sets Detail and returns the receiver for chaining.
func (e *OIError) WithDetail(format string, args ...any) *OIError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithOperation sets Operation and Component and returns the receiver.
func (e *OIError) WithOperation(operation, component string) *OIError {
	e.Operation = operation
	e.Component = component
	return e
}

// captureStack skips captureStack, New/Wrap and the immediate caller.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the error interface.
//
// Format: [CODE] Message: Detail (operation: Operation, component: Component) caused by: cause
func (e *OIError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error.
func (e *OIError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *OIError with the same Code, so that
// errors.Is(err, &OIError{Code: CodeDanglingTarget}) works.
func (e *OIError) Is(target error) bool {
	t, ok := target.(*OIError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *OIError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}

// HasCode reports whether err (or anything it wraps) is an *OIError with code.
func HasCode(err error, code string) bool {
	for err != nil {
		if oiErr, ok := err.(*OIError); ok && oiErr.Code == code {
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
