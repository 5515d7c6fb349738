// Completion: 100% - target platform handling
package loom

import (
	"fmt"
	"runtime"
	"strings"
)

// Architecture type
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX86_64
	ArchARM64
	ArchRiscv64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchARM64:
		return "aarch64"
	case ArchRiscv64:
		return "riscv64"
	default:
		return "unknown"
	}
}

// ParseArch parses an architecture string (like GOARCH values)
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(s) {
	case "x86_64", "amd64", "x86-64":
		return ArchX86_64, nil
	case "aarch64", "arm64":
		return ArchARM64, nil
	case "riscv64", "riscv", "rv64":
		return ArchRiscv64, nil
	default:
		return 0, fmt.Errorf("unsupported architecture: %s (supported: amd64, arm64, riscv64)", s)
	}
}

// OS type
type OS int

const (
	OSLinux OS = iota
	OSDarwin
	OSFreeBSD
	OSWindows
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSDarwin:
		return "darwin"
	case OSFreeBSD:
		return "freebsd"
	case OSWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// ParseOS parses an OS string (like GOOS values)
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(s) {
	case "linux":
		return OSLinux, nil
	case "darwin", "macos":
		return OSDarwin, nil
	case "freebsd":
		return OSFreeBSD, nil
	case "windows", "win":
		return OSWindows, nil
	default:
		return 0, fmt.Errorf("unsupported OS: %s (supported: linux, darwin, freebsd, windows)", s)
	}
}

// Platform represents a target platform (architecture + OS)
type Platform struct {
	Arch Arch
	OS   OS
}

// FullString returns the full platform string like "arm64-darwin"
func (p Platform) FullString() string {
	archStr := p.Arch.String()
	if p.Arch == ArchARM64 {
		archStr = "arm64"
	} else if p.Arch == ArchX86_64 {
		archStr = "amd64"
	}
	return archStr + "-" + p.OS.String()
}

// Triple returns the LLVM target triple for the platform.
func (p Platform) Triple() string {
	arch := p.Arch.String()
	switch p.OS {
	case OSDarwin:
		if p.Arch == ArchARM64 {
			arch = "arm64"
		}
		return arch + "-apple-macosx"
	case OSWindows:
		return arch + "-pc-windows-gnu"
	case OSFreeBSD:
		return arch + "-unknown-freebsd"
	default:
		return arch + "-unknown-linux-gnu"
	}
}

// LinkLibs returns the system libraries the runtime needs on this
// platform, as flags for the C compiler driver. Threads come from
// pthreads everywhere except Windows.
func (p Platform) LinkLibs() []string {
	switch p.OS {
	case OSDarwin:
		return []string{"-lpthread", "-framework", "Security", "-framework", "CoreFoundation"}
	case OSWindows:
		return []string{"-lws2_32", "-luserenv", "-lbcrypt"}
	case OSFreeBSD:
		return []string{"-lpthread", "-lm"}
	default:
		return []string{"-lpthread", "-ldl", "-lm"}
	}
}

// ExecutableName applies the platform's executable suffix.
func (p Platform) ExecutableName(base string) string {
	if p.OS == OSWindows && !strings.HasSuffix(base, ".exe") {
		return base + ".exe"
	}
	return base
}

// HostPlatform returns the platform for the current runtime
func HostPlatform() Platform {
	var arch Arch
	switch runtime.GOARCH {
	case "amd64":
		arch = ArchX86_64
	case "arm64":
		arch = ArchARM64
	case "riscv64":
		arch = ArchRiscv64
	default:
		arch = ArchX86_64 // fallback
	}

	var os OS
	switch runtime.GOOS {
	case "linux":
		os = OSLinux
	case "darwin":
		os = OSDarwin
	case "freebsd":
		os = OSFreeBSD
	case "windows":
		os = OSWindows
	default:
		os = OSLinux // fallback
	}

	return Platform{Arch: arch, OS: os}
}

// ParsePlatform parses "arch" or "arch-os" into a Platform, keeping
// the host value for whichever half is missing.
func ParsePlatform(s string) (Platform, error) {
	host := HostPlatform()
	if s == "" {
		return host, nil
	}
	parts := strings.SplitN(s, "-", 2)
	arch, err := ParseArch(parts[0])
	if err != nil {
		return Platform{}, err
	}
	os := host.OS
	if len(parts) == 2 {
		os, err = ParseOS(parts[1])
		if err != nil {
			return Platform{}, err
		}
	}
	return Platform{Arch: arch, OS: os}, nil
}
