package arduino

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// cliExeName returns the arduino-cli executable name for the current OS.
func cliExeName() string {
	if runtime.GOOS == "windows" {
		return "arduino-cli.exe"
	}
	return "arduino-cli"
}

// ResolveCLI locates the arduino-cli executable for all subsequent
// toolchain invocations.
// Resolution order: explicit override → ARDUINO_CLI env var → PATH.
// Returns ErrToolchainUnavailable when none of them yields an executable,
// so callers can distinguish "toolchain missing" from a failed run.
func ResolveCLI(override string) (string, error) {
	candidates := []string{}
	if override != "" {
		candidates = append(candidates, override)
	}
	if env := os.Getenv("ARDUINO_CLI"); env != "" {
		candidates = append(candidates, env)
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}

	path, err := exec.LookPath(cliExeName())
	if err != nil {
		return "", fmt.Errorf("%w: install it or set ARDUINO_CLI", ErrToolchainUnavailable)
	}
	return path, nil
}
