// Completion: 100% - terminal detection for colored diagnostics
//go:build darwin || freebsd

package loom

import (
	"os"

	"golang.org/x/sys/unix"
)

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), unix.TIOCGETA)
	return err == nil
}
