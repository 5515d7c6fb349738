// Completion: 100% - terminal detection stub for remaining platforms
//go:build !linux && !darwin && !freebsd

package loom

import "os"

func isTerminal(f *os.File) bool {
	return false
}
