package arduino

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultCompileTimeout bounds a single external compile. Large cores
// (ESP32) can legitimately take most of this on a cold cache.
const DefaultCompileTimeout = 60 * time.Second

// CompileResult reports one compiler invocation. Diagnostics preserve
// the tool's stdout/stderr interleaving line by line; ArtifactPath is
// set only on success.
type CompileResult struct {
	Success      bool     `json:"success"`
	ArtifactPath string   `json:"artifact_path,omitempty"`
	Diagnostics  []string `json:"diagnostics"`
	ExitCode     int      `json:"exit_code"`
}

// Compiler translates a sketch directory into a flashable artifact by
// invoking the external toolchain. It never touches the serial port, so
// it needs no port lock.
type Compiler struct {
	runner  Runner
	timeout time.Duration
}

// NewCompiler returns a Compiler with the given invocation timeout;
// zero means DefaultCompileTimeout.
func NewCompiler(runner Runner, timeout time.Duration) *Compiler {
	if timeout <= 0 {
		timeout = DefaultCompileTimeout
	}
	return &Compiler{runner: runner, timeout: timeout}
}

// Compile builds the sketch at sketchPath for the given FQBN, blocking
// until the toolchain exits or the compile timeout elapses. On timeout
// the process is killed and the result carries a timeout diagnostic.
// Success requires both a zero exit status and a resolvable artifact in
// the build output directory. The returned error is reserved for
// invocation-level failures (toolchain missing); compile errors are
// reported through the result so diagnostics are never lost.
func (c *Compiler) Compile(ctx context.Context, sketchPath, fqbn string) (CompileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	outputDir := filepath.Join(sketchPath, "build")
	res, err := c.runner.Run(ctx,
		"compile",
		"--fqbn", fqbn,
		"--output-dir", outputDir,
		sketchPath,
	)

	result := CompileResult{
		Diagnostics: res.Lines,
		ExitCode:    res.ExitCode,
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Diagnostics = append(result.Diagnostics,
				fmt.Sprintf("%v after %s", ErrCompileTimeout, c.timeout))
			return result, nil
		}
		return result, err
	}

	if res.ExitCode != 0 {
		return result, nil
	}

	artifact, ok := resolveArtifact(outputDir, filepath.Base(sketchPath))
	if !ok {
		result.Diagnostics = append(result.Diagnostics,
			fmt.Sprintf("compile succeeded but no artifact found under %s", outputDir))
		return result, nil
	}

	result.Success = true
	result.ArtifactPath = artifact
	return result, nil
}

// artifactExtensions in preference order. Which one the toolchain emits
// depends on the target core (avr → hex, rp2040 → uf2, esp32 → bin).
var artifactExtensions = []string{".hex", ".bin", ".uf2", ".elf"}

// resolveArtifact finds the flashable binary the toolchain wrote to the
// output directory, preferring <sketch>.ino.<ext> matches.
func resolveArtifact(outputDir, sketchName string) (string, bool) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", false
	}

	for _, ext := range artifactExtensions {
		exact := sketchName + ".ino" + ext
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if e.Name() == exact {
				return filepath.Join(outputDir, e.Name()), true
			}
		}
	}
	// Fall back to any flashable file; .elf is exact-match only since
	// suffix matching would catch bootloader images.
	for _, ext := range artifactExtensions[:3] {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.HasSuffix(e.Name(), ext) {
				return filepath.Join(outputDir, e.Name()), true
			}
		}
	}
	return "", false
}
