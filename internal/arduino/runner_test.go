package arduino

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func shellRunner(t *testing.T) *ExecRunner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based runner tests are unix-only")
	}
	return NewExecRunner("/bin/sh", zerolog.Nop())
}

func TestRunCapturesMergedOutputInOrder(t *testing.T) {
	r := shellRunner(t)

	res, err := r.Run(context.Background(), "-c", "echo one; echo two >&2; echo three")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", res.ExitCode)
	}
	want := []string{"one", "two", "three"}
	if len(res.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(res.Lines), res.Lines)
	}
	for i, line := range want {
		if res.Lines[i] != line {
			t.Errorf("line %d: expected %q, got %q", i, line, res.Lines[i])
		}
	}
}

func TestRunReportsNonZeroExit(t *testing.T) {
	r := shellRunner(t)

	res, err := r.Run(context.Background(), "-c", "echo boom; exit 3")
	if err != nil {
		t.Fatalf("non-zero exit should not be an invocation error, got %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("expected exit 3, got %d", res.ExitCode)
	}
	if len(res.Lines) != 1 || res.Lines[0] != "boom" {
		t.Errorf("expected diagnostics preserved, got %v", res.Lines)
	}
}

func TestRunMissingBinaryIsToolchainUnavailable(t *testing.T) {
	r := NewExecRunner("definitely-not-a-real-binary-anywhere", zerolog.Nop())

	_, err := r.Run(context.Background())
	if !errors.Is(err, ErrToolchainUnavailable) {
		t.Fatalf("expected ErrToolchainUnavailable, got %v", err)
	}
}

func TestRunKillsProcessOnTimeout(t *testing.T) {
	r := shellRunner(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Run(ctx, "-c", "sleep 10")
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("process not killed promptly, took %s", elapsed)
	}
}
