// Completion: 100% - error formatting tests
package loom

import (
	"strings"
	"testing"
)

func TestCategoryStrings(t *testing.T) {
	tests := []struct {
		cat  ErrorCategory
		want string
	}{
		{CategoryUnresolved, "unresolved"},
		{CategoryUnsupported, "unsupported"},
		{CategoryCodegen, "codegen"},
		{CategoryLink, "link"},
		{CategoryInternal, "internal"},
		{ErrorCategory(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.cat.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorInterface(t *testing.T) {
	err := errUndefinedVariable("foo")
	want := "unresolved: undefined variable 'foo'"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFormatPlain(t *testing.T) {
	err := &CompileError{
		Category: CategoryCodegen,
		Message:  "something went sideways",
		Help:     "try the other way",
	}
	out := err.Format(false)
	if strings.Contains(out, "\033[") {
		t.Error("plain format should carry no escape codes")
	}
	if !strings.Contains(out, "error [codegen]: something went sideways") {
		t.Errorf("unexpected format: %q", out)
	}
	if !strings.Contains(out, "help: try the other way") {
		t.Errorf("missing help line: %q", out)
	}
}

func TestFormatColor(t *testing.T) {
	err := &CompileError{Category: CategoryLink, Message: "cc exited with status 1"}
	out := err.Format(true)
	if !strings.Contains(out, "\033[1;31m") {
		t.Error("colored format should highlight the error keyword")
	}
	if !strings.Contains(out, "[link]: cc exited with status 1") {
		t.Errorf("unexpected format: %q", out)
	}
}

func TestFormatOmitsEmptyHelp(t *testing.T) {
	err := &CompileError{Category: CategoryUnresolved, Message: "undefined variable 'x'"}
	if strings.Contains(err.Format(false), "help:") {
		t.Error("format should skip the help line when there is none")
	}
}
