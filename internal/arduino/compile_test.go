package arduino

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeArtifact simulates the toolchain dropping a build output.
func writeArtifact(t *testing.T, outputDir, name string) string {
	t.Helper()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, []byte{0xde, 0xad}, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileSuccessResolvesArtifact(t *testing.T) {
	sketchDir := filepath.Join(t.TempDir(), "blink")
	runner := &fakeRunner{
		handler: func(args []string) (Result, error) {
			writeArtifact(t, filepath.Join(sketchDir, "build"), "blink.ino.hex")
			return Result{Lines: []string{"Sketch uses 924 bytes"}, ExitCode: 0}, nil
		},
	}
	c := NewCompiler(runner, 0)

	result, err := c.Compile(context.Background(), sketchDir, "arduino:avr:uno")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if filepath.Base(result.ArtifactPath) != "blink.ino.hex" {
		t.Errorf("unexpected artifact: %s", result.ArtifactPath)
	}

	call := runner.lastCall()
	if call[0] != "compile" {
		t.Errorf("expected compile subcommand, got %v", call)
	}
	joined := strings.Join(call, " ")
	if !strings.Contains(joined, "--fqbn arduino:avr:uno") {
		t.Errorf("fqbn not passed: %v", call)
	}
}

func TestCompileFailureKeepsDiagnostics(t *testing.T) {
	runner := &fakeRunner{
		handler: func(args []string) (Result, error) {
			return Result{
				Lines:    []string{"blink.ino: In function 'void loop()':", "blink.ino:3:5: error: 'x' was not declared"},
				ExitCode: 1,
			}, nil
		},
	}
	c := NewCompiler(runner, 0)

	result, err := c.Compile(context.Background(), t.TempDir(), "arduino:avr:uno")
	if err != nil {
		t.Fatalf("compile error should be a result, got %v", err)
	}
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.ExitCode != 1 {
		t.Errorf("expected exit 1, got %d", result.ExitCode)
	}
	if len(result.Diagnostics) != 2 || !strings.Contains(result.Diagnostics[1], "not declared") {
		t.Errorf("diagnostics lost: %v", result.Diagnostics)
	}
	if result.ArtifactPath != "" {
		t.Errorf("artifact must be absent on failure, got %s", result.ArtifactPath)
	}
}

func TestCompileZeroExitWithoutArtifactFails(t *testing.T) {
	runner := &fakeRunner{
		handler: func(args []string) (Result, error) {
			return Result{ExitCode: 0}, nil
		},
	}
	c := NewCompiler(runner, 0)

	result, err := c.Compile(context.Background(), filepath.Join(t.TempDir(), "ghost"), "arduino:avr:uno")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if result.Success {
		t.Fatal("success requires a resolvable artifact")
	}
	last := result.Diagnostics[len(result.Diagnostics)-1]
	if !strings.Contains(last, "no artifact") {
		t.Errorf("expected artifact diagnostic, got %v", result.Diagnostics)
	}
}

func TestCompileTimeoutAppendsDiagnostic(t *testing.T) {
	runner := &fakeRunner{
		handler: func(args []string) (Result, error) {
			return Result{Lines: []string{"Compiling core..."}, ExitCode: -1}, context.DeadlineExceeded
		},
	}
	c := NewCompiler(runner, 50*time.Millisecond)

	result, err := c.Compile(context.Background(), t.TempDir(), "arduino:avr:uno")
	if err != nil {
		t.Fatalf("timeout should be a result, got %v", err)
	}
	if result.Success {
		t.Fatal("expected failure on timeout")
	}
	last := result.Diagnostics[len(result.Diagnostics)-1]
	if !strings.Contains(last, "timed out") {
		t.Errorf("expected timeout diagnostic appended, got %v", result.Diagnostics)
	}
	if result.Diagnostics[0] != "Compiling core..." {
		t.Errorf("pre-timeout output lost: %v", result.Diagnostics)
	}
}

func TestResolveArtifactPrefersExactHex(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "blink.ino.elf")
	want := writeArtifact(t, dir, "blink.ino.hex")
	writeArtifact(t, dir, "blink.ino.with_bootloader.hex")

	got, ok := resolveArtifact(dir, "blink")
	if !ok {
		t.Fatal("expected artifact")
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
