// Package install handles the optional installation of the native
// local-inference interface (llama.cpp) with a hardware-appropriate
// acceleration backend.
package install

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/quilldocs/quill/internal/errors"
	"github.com/quilldocs/quill/internal/logger"
)

const (
	binaryName = "llama-cli"
	sourceRepo = "https://github.com/ggml-org/llama.cpp"
)

// Flavor identifies an acceleration backend for the native interface.
type Flavor string

const (
	FlavorCUDA     Flavor = "cuBLAS"
	FlavorHIP      Flavor = "hipBLAS"
	FlavorMetal    Flavor = "Metal"
	FlavorOpenBLAS Flavor = "OpenBLAS"
)

// flavorCMakeArgs holds the configure flags for each acceleration flavor.
var flavorCMakeArgs = map[Flavor][]string{
	FlavorCUDA:     {"-DGGML_CUDA=ON"},
	FlavorHIP:      {"-DGGML_HIP=ON"},
	FlavorMetal:    {"-DGGML_METAL=ON"},
	FlavorOpenBLAS: {"-DGGML_BLAS=ON", "-DGGML_BLAS_VENDOR=OpenBLAS"},
}

// Probe pairs a host-capability check with the flavor it selects.
type Probe struct {
	Name   string
	Check  func() bool
	Flavor Flavor
}

// DefaultProbes returns the capability probes in strict priority order:
// NVIDIA tooling, then AMD tooling, then the unified-memory GPU driver on
// darwin, then the CPU-optimized fallback.
func DefaultProbes() []Probe {
	return []Probe{
		{Name: "nvidia-smi", Check: commandAvailable("nvidia-smi"), Flavor: FlavorCUDA},
		{Name: "rocminfo", Check: commandAvailable("rocminfo"), Flavor: FlavorHIP},
		{Name: "metal", Check: func() bool { return runtime.GOOS == "darwin" }, Flavor: FlavorMetal},
		{Name: "openblas", Check: func() bool { return true }, Flavor: FlavorOpenBLAS},
	}
}

// SelectFlavor evaluates probes in order and returns the first match.
func SelectFlavor(probes []Probe) Flavor {
	for _, p := range probes {
		if p.Check() {
			return p.Flavor
		}
	}
	return FlavorOpenBLAS
}

// commandAvailable probes for a tool by running it and checking the exit status.
func commandAvailable(name string) func() bool {
	return func() bool {
		cmd := exec.Command(name)
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		return cmd.Run() == nil
	}
}

// Installer offers to build and install the native inference interface. All
// subprocess steps block; the installer holds no locks while running them.
type Installer struct {
	In     io.Reader
	Out    io.Writer
	Probes []Probe

	// LookPath and Run are injectable for tests.
	LookPath func(file string) (string, error)
	Run      func(name string, args ...string) error
}

// New creates an installer wired to stdin/stdout and the default probes.
func New() *Installer {
	return &Installer{
		In:       os.Stdin,
		Out:      os.Stdout,
		Probes:   DefaultProbes(),
		LookPath: exec.LookPath,
		Run:      runCommand,
	}
}

// Ensure checks for the native inference binary and, when absent, prompts
// once to install it. Decline and build failure both return an error; the
// caller treats either as non-fatal to backend construction.
func (i *Installer) Ensure() error {
	const op = "Ensure"

	if _, err := i.LookPath(binaryName); err == nil {
		return nil
	}

	fmt.Fprintf(i.Out, "Local LLM interface binary %q not found. Install llama.cpp? [Y/n]: ", binaryName)
	if !i.confirm() {
		fmt.Fprintln(i.Out, "Installation cancelled.")
		return errors.InstallError(op, "installation declined")
	}

	flavor := SelectFlavor(i.Probes)
	fmt.Fprintf(i.Out, "Installing llama.cpp with %s acceleration...\n", flavor)

	if err := i.install(flavor); err != nil {
		fmt.Fprintf(i.Out, "Error during installation with %s: %v\n", flavor, err)
		return errors.Wrap(err, errors.ErrorTypeInstall, op, "installation failed")
	}

	fmt.Fprintln(i.Out, "Finished installing the local LLM interface.")
	return nil
}

// install clones, configures, and builds llama.cpp, then copies the
// inference binary into ~/.local/bin.
func (i *Installer) install(flavor Flavor) error {
	srcDir, err := os.MkdirTemp("", "quill-llamacpp-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(srcDir)

	if err := i.Run("git", "clone", "--depth", "1", sourceRepo, srcDir); err != nil {
		return err
	}

	buildDir := filepath.Join(srcDir, "build")
	configureArgs := append([]string{"-S", srcDir, "-B", buildDir}, flavorCMakeArgs[flavor]...)
	if err := i.Run("cmake", configureArgs...); err != nil {
		return err
	}

	if err := i.Run("cmake", "--build", buildDir, "--target", binaryName, "--config", "Release"); err != nil {
		return err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	destDir := filepath.Join(home, ".local", "bin")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	return copyFile(filepath.Join(buildDir, "bin", binaryName), filepath.Join(destDir, binaryName))
}

// confirm reads a yes/no answer; empty input defaults to yes.
func (i *Installer) confirm() bool {
	reader := bufio.NewReader(i.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}

// runCommand executes a blocking subprocess, surfacing its stderr.
func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = io.Discard
	var stderr strings.Builder
	cmd.Stderr = &stderr

	logger.Debug("running install step", "command", name, "args", strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// copyFile copies src to dst, preserving executable permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
