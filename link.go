// Completion: 100% - executable production via clang and the system linker
package loom

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WriteIR writes the textual IR to a file.
func (c *Compiler) WriteIR(path string) error {
	return os.WriteFile(path, []byte(c.IR()), 0o644)
}

// CompileToExecutable compiles a program and links it against the
// native runtime into an executable at outputPath.
func CompileToExecutable(file *SourceFile, outputPath string, opts Options) error {
	c := NewCompiler(opts)
	if err := c.Compile(file); err != nil {
		return err
	}
	return c.Link(outputPath, opts)
}

// Link assembles the compiled module and links the final executable.
// The IR goes through clang to an object file, then the C compiler
// driver links it with the runtime library, pthreads and the
// platform's system libraries.
func (c *Compiler) Link(outputPath string, opts Options) error {
	runtimeLib := opts.RuntimeLib
	if runtimeLib == "" {
		var err error
		runtimeLib, err = findRuntimeLibrary()
		if err != nil {
			return err
		}
	}

	workDir, err := os.MkdirTemp("", "loom-build-")
	if err != nil {
		return errLink("cannot create build directory: %v", err)
	}
	defer os.RemoveAll(workDir)

	llPath := filepath.Join(workDir, "program.ll")
	if err := c.WriteIR(llPath); err != nil {
		return errLink("cannot write IR: %v", err)
	}
	if opts.KeepIR {
		kept := outputPath + ".ll"
		if err := c.WriteIR(kept); err != nil {
			return errLink("cannot write IR: %v", err)
		}
	}

	objPath := filepath.Join(workDir, "program.o")
	if err := runTool(opts, opts.Clang,
		"-c", llPath,
		fmt.Sprintf("-O%d", opts.OptLevel),
		"-target", opts.Target.Triple(),
		"-o", objPath,
	); err != nil {
		return err
	}

	output := opts.Target.ExecutableName(outputPath)
	args := []string{objPath, runtimeLib, "-o", output}
	args = append(args, opts.Target.LinkLibs()...)
	return runTool(opts, opts.CC, args...)
}

// runTool executes an external tool, folding its diagnostics into the
// link error so the caller sees what the tool saw.
func runTool(opts Options, tool string, args ...string) error {
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "%s %s\n", tool, strings.Join(args, " "))
	}
	cmd := exec.Command(tool, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return errLink("%s failed: %v", tool, err)
		}
		return errLink("%s failed: %v\n%s", tool, err, msg)
	}
	return nil
}

// findRuntimeLibrary looks for libloom_runtime.a near the executable
// and in the conventional build locations.
func findRuntimeLibrary() (string, error) {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "libloom_runtime.a"),
			filepath.Join(dir, "..", "lib", "libloom_runtime.a"),
		)
	}
	candidates = append(candidates,
		filepath.Join("runtime", "libloom_runtime.a"),
		filepath.Join("runtime", "build", "libloom_runtime.a"),
		"/usr/local/lib/libloom_runtime.a",
	)
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", errLink("cannot find libloom_runtime.a; set LOOM_RUNTIME_LIB to its path")
}
