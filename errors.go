// Completion: 100% - Error handling complete, clear and helpful messages
package loom

import (
	"fmt"
	"strings"
)

// ErrorCategory classifies the type of error
type ErrorCategory int

const (
	CategoryUnresolved ErrorCategory = iota
	CategoryUnsupported
	CategoryCodegen
	CategoryLink
	CategoryInternal
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryUnresolved:
		return "unresolved"
	case CategoryUnsupported:
		return "unsupported"
	case CategoryCodegen:
		return "codegen"
	case CategoryLink:
		return "link"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// CompileError represents a single compilation error
type CompileError struct {
	Category ErrorCategory
	Message  string
	Help     string // "Did you mean 'x'?"
}

// Error implements the error interface
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Format returns a nicely formatted error message with optional color
func (e *CompileError) Format(useColor bool) string {
	var sb strings.Builder

	if useColor {
		sb.WriteString("\033[1;31m") // Bold red
	}
	sb.WriteString("error")
	if useColor {
		sb.WriteString("\033[0m")
	}
	sb.WriteString(" [")
	sb.WriteString(e.Category.String())
	sb.WriteString("]: ")
	sb.WriteString(e.Message)
	sb.WriteString("\n")

	if e.Help != "" {
		if useColor {
			sb.WriteString("\033[1;32m") // Bold green
		}
		sb.WriteString("   help: ")
		if useColor {
			sb.WriteString("\033[0m")
		}
		sb.WriteString(e.Help)
		sb.WriteString("\n")
	}

	return sb.String()
}

// errUndefinedVariable reports a read of a name with no definition in
// scope and no matching function.
func errUndefinedVariable(name string) *CompileError {
	return &CompileError{
		Category: CategoryUnresolved,
		Message:  fmt.Sprintf("undefined variable '%s'", name),
		Help:     "declare it with an assignment before use",
	}
}

// errUndefinedFunction reports a call to a name that is neither a
// user function nor a runtime primitive.
func errUndefinedFunction(name string) *CompileError {
	return &CompileError{
		Category: CategoryUnresolved,
		Message:  fmt.Sprintf("undefined function '%s'", name),
	}
}

// errUnknownField reports a field access that no registered struct
// type declares.
func errUnknownField(field string) *CompileError {
	return &CompileError{
		Category: CategoryUnresolved,
		Message:  fmt.Sprintf("unknown struct field '%s'", field),
	}
}

// errUnknownType reports a struct literal for an unregistered type.
func errUnknownType(name string) *CompileError {
	return &CompileError{
		Category: CategoryUnresolved,
		Message:  fmt.Sprintf("unknown type '%s'", name),
	}
}

// errUnknownMethod reports a method call that no registered struct
// type provides.
func errUnknownMethod(name string) *CompileError {
	return &CompileError{
		Category: CategoryUnresolved,
		Message:  fmt.Sprintf("no struct type has a method '%s'", name),
	}
}

// errUnsupported reports a construct the generator recognizes but
// cannot lower.
func errUnsupported(what string) *CompileError {
	return &CompileError{
		Category: CategoryUnsupported,
		Message:  fmt.Sprintf("%s is not supported by the native backend", what),
	}
}

// errCodegen reports a lowering failure for an otherwise valid construct.
func errCodegen(format string, args ...interface{}) *CompileError {
	return &CompileError{
		Category: CategoryCodegen,
		Message:  fmt.Sprintf(format, args...),
	}
}

// errLink reports a failure while producing the final executable. The
// tool's own diagnostic output is preserved in the message.
func errLink(format string, args ...interface{}) *CompileError {
	return &CompileError{
		Category: CategoryLink,
		Message:  fmt.Sprintf(format, args...),
	}
}

func errInternal(format string, args ...interface{}) *CompileError {
	return &CompileError{
		Category: CategoryInternal,
		Message:  fmt.Sprintf(format, args...),
	}
}
