// Completion: 100% - target platform tests
package loom

import "testing"

func TestParseArch(t *testing.T) {
	tests := []struct {
		in   string
		want Arch
	}{
		{"amd64", ArchX86_64},
		{"x86_64", ArchX86_64},
		{"X86-64", ArchX86_64},
		{"arm64", ArchARM64},
		{"aarch64", ArchARM64},
		{"riscv64", ArchRiscv64},
		{"rv64", ArchRiscv64},
	}
	for _, tt := range tests {
		got, err := ParseArch(tt.in)
		if err != nil {
			t.Errorf("ParseArch(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseArch(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseArch("mips"); err == nil {
		t.Error("ParseArch(mips) should fail")
	}
}

func TestParseOS(t *testing.T) {
	tests := []struct {
		in   string
		want OS
	}{
		{"linux", OSLinux},
		{"darwin", OSDarwin},
		{"macos", OSDarwin},
		{"freebsd", OSFreeBSD},
		{"windows", OSWindows},
		{"win", OSWindows},
	}
	for _, tt := range tests {
		got, err := ParseOS(tt.in)
		if err != nil {
			t.Errorf("ParseOS(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOS(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseOS("plan9"); err == nil {
		t.Error("ParseOS(plan9) should fail")
	}
}

func TestTriple(t *testing.T) {
	tests := []struct {
		p    Platform
		want string
	}{
		{Platform{ArchX86_64, OSLinux}, "x86_64-unknown-linux-gnu"},
		{Platform{ArchARM64, OSLinux}, "aarch64-unknown-linux-gnu"},
		{Platform{ArchARM64, OSDarwin}, "arm64-apple-macosx"},
		{Platform{ArchX86_64, OSDarwin}, "x86_64-apple-macosx"},
		{Platform{ArchX86_64, OSWindows}, "x86_64-pc-windows-gnu"},
		{Platform{ArchRiscv64, OSFreeBSD}, "riscv64-unknown-freebsd"},
	}
	for _, tt := range tests {
		if got := tt.p.Triple(); got != tt.want {
			t.Errorf("%s: Triple() = %q, want %q", tt.p.FullString(), got, tt.want)
		}
	}
}

func TestFullString(t *testing.T) {
	tests := []struct {
		p    Platform
		want string
	}{
		{Platform{ArchX86_64, OSLinux}, "amd64-linux"},
		{Platform{ArchARM64, OSDarwin}, "arm64-darwin"},
		{Platform{ArchRiscv64, OSLinux}, "riscv64-linux"},
	}
	for _, tt := range tests {
		if got := tt.p.FullString(); got != tt.want {
			t.Errorf("FullString() = %q, want %q", got, tt.want)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform("arm64-linux")
	if err != nil {
		t.Fatalf("ParsePlatform: %v", err)
	}
	if p.Arch != ArchARM64 || p.OS != OSLinux {
		t.Errorf("ParsePlatform(arm64-linux) = %v", p)
	}

	// A bare architecture keeps the host OS.
	p, err = ParsePlatform("riscv64")
	if err != nil {
		t.Fatalf("ParsePlatform: %v", err)
	}
	if p.Arch != ArchRiscv64 {
		t.Errorf("arch = %v, want riscv64", p.Arch)
	}
	if p.OS != HostPlatform().OS {
		t.Errorf("os = %v, want host default", p.OS)
	}

	// Empty means host.
	p, err = ParsePlatform("")
	if err != nil {
		t.Fatalf("ParsePlatform: %v", err)
	}
	if p != HostPlatform() {
		t.Errorf("ParsePlatform(\"\") = %v, want host", p)
	}

	if _, err := ParsePlatform("sparc-linux"); err == nil {
		t.Error("ParsePlatform(sparc-linux) should fail")
	}
	if _, err := ParsePlatform("amd64-plan9"); err == nil {
		t.Error("ParsePlatform(amd64-plan9) should fail")
	}
}

func TestLinkLibs(t *testing.T) {
	linux := Platform{ArchX86_64, OSLinux}.LinkLibs()
	if len(linux) == 0 || linux[0] != "-lpthread" {
		t.Errorf("linux libs = %v, want pthread first", linux)
	}
	win := Platform{ArchX86_64, OSWindows}.LinkLibs()
	for _, lib := range win {
		if lib == "-lpthread" {
			t.Error("windows should not link pthread")
		}
	}
}

func TestExecutableName(t *testing.T) {
	if got := (Platform{ArchX86_64, OSWindows}).ExecutableName("out"); got != "out.exe" {
		t.Errorf("ExecutableName = %q, want out.exe", got)
	}
	if got := (Platform{ArchX86_64, OSWindows}).ExecutableName("out.exe"); got != "out.exe" {
		t.Errorf("ExecutableName = %q, suffix should not double", got)
	}
	if got := (Platform{ArchX86_64, OSLinux}).ExecutableName("out"); got != "out" {
		t.Errorf("ExecutableName = %q, want out", got)
	}
}
