// Completion: 100% - compiler options with environment overrides
package loom

import (
	"os"

	"github.com/xyproto/env/v2"
)

// Options configures code generation and linking. The zero value is
// not useful; start from DefaultOptions.
type Options struct {
	Target     Platform
	OptLevel   int    // 0..3, passed to clang as -O<n>
	RuntimeLib string // path to libloom_runtime.a, found automatically if empty
	CC         string // C compiler driver used for linking
	Clang      string // clang binary used to assemble the IR
	KeepIR     bool   // leave the .ll file next to the output
	Verbose    bool   // echo external commands to stderr
	UseColor   bool   // ANSI colors in diagnostics
}

// DefaultOptions builds options for the host platform, honoring the
// LOOM_CC, LOOM_CLANG, LOOM_RUNTIME_LIB and NO_COLOR environment
// variables.
func DefaultOptions() Options {
	return Options{
		Target:     HostPlatform(),
		OptLevel:   env.Int("LOOM_OPT", 1),
		RuntimeLib: env.Str("LOOM_RUNTIME_LIB"),
		CC:         env.Str("LOOM_CC", "cc"),
		Clang:      env.Str("LOOM_CLANG", "clang"),
		Verbose:    env.Bool("LOOM_VERBOSE"),
		UseColor:   !env.Has("NO_COLOR") && isTerminal(os.Stderr),
	}
}
