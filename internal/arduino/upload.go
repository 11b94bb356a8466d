package arduino

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/buckleypaul/ardu/internal/serial"
)

// Upload defaults: bounded waits, then fail rather than block a caller
// indefinitely on a contended or wedged port.
const (
	DefaultUploadTimeout = 30 * time.Second
	DefaultPortAttempts  = 2
	DefaultPortBackoff   = 500 * time.Millisecond
)

// UploadResult reports one uploader invocation.
type UploadResult struct {
	Success     bool     `json:"success"`
	Diagnostics []string `json:"diagnostics"`
	ExitCode    int      `json:"exit_code"`
}

// Uploader flashes a compiled artifact to a board. It holds the port
// lock for the duration of the external invocation so no monitor session
// can interleave with the flash traffic.
type Uploader struct {
	runner   Runner
	locks    *serial.PortLocks
	timeout  time.Duration
	attempts int
	backoff  time.Duration
}

// NewUploader returns an Uploader sharing the given port lock map with
// the serial monitor. Zero timeout/attempts/backoff select the defaults.
func NewUploader(runner Runner, locks *serial.PortLocks, timeout time.Duration, attempts int, backoff time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	if attempts <= 0 {
		attempts = DefaultPortAttempts
	}
	if backoff <= 0 {
		backoff = DefaultPortBackoff
	}
	return &Uploader{runner: runner, locks: locks, timeout: timeout, attempts: attempts, backoff: backoff}
}

// Upload flashes artifactPath to the board over its port. The port lock
// is acquired with a bounded retry (attempts with backoff, then
// serial.ErrPortBusy) instead of blocking indefinitely. A port-access
// failure in the tool's diagnostics is surfaced as
// serial.ErrPermissionDenied with an actionable hint; retrying that
// without a permission fix cannot succeed, so it is never retried here.
func (u *Uploader) Upload(ctx context.Context, artifactPath string, board Board) (UploadResult, error) {
	if _, err := os.Stat(artifactPath); err != nil {
		return UploadResult{ExitCode: -1}, fmt.Errorf("artifact %s: %w", artifactPath, err)
	}
	if board.Port == "" {
		return UploadResult{ExitCode: -1}, fmt.Errorf("%w: board has no port", ErrBoardNotFound)
	}

	if err := u.acquirePort(ctx, board.Port); err != nil {
		return UploadResult{ExitCode: -1}, err
	}
	defer u.locks.Release(board.Port)

	runCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	res, err := u.runner.Run(runCtx,
		"upload",
		"-p", board.Port,
		"--fqbn", board.FQBN,
		"--input-file", artifactPath,
	)

	result := UploadResult{
		Diagnostics: res.Lines,
		ExitCode:    res.ExitCode,
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Diagnostics = append(result.Diagnostics,
				fmt.Sprintf("%v after %s", ErrUploadTimeout, u.timeout))
			return result, nil
		}
		return result, err
	}

	if res.ExitCode != 0 {
		if isPermissionDiagnostic(res.Lines) {
			result.Diagnostics = append(result.Diagnostics, permissionHint(board.Port))
			return result, fmt.Errorf("%w: %s", serial.ErrPermissionDenied, board.Port)
		}
		return result, nil
	}

	result.Success = true
	return result, nil
}

// acquirePort takes the port lock with bounded retries.
func (u *Uploader) acquirePort(ctx context.Context, port string) error {
	for attempt := 0; attempt < u.attempts; attempt++ {
		if u.locks.TryAcquire(port) {
			return nil
		}
		if attempt == u.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(serial.ErrPortBusy, ctx.Err())
		case <-time.After(u.backoff << attempt):
		}
	}
	return fmt.Errorf("%w: %s held by another operation", serial.ErrPortBusy, port)
}

// isPermissionDiagnostic pattern-matches uploader stderr for OS-level
// port access errors so callers can show an actionable message instead
// of a generic flash failure.
func isPermissionDiagnostic(lines []string) bool {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "permission denied") ||
			strings.Contains(lower, "can't open device") ||
			strings.Contains(lower, "access is denied") {
			return true
		}
	}
	return false
}

// permissionHint explains how to make the device node writable. Kept in
// the diagnostics rather than acted on: privilege escalation is the
// operator's call, not this layer's.
func permissionHint(port string) string {
	return fmt.Sprintf(
		"Permission denied on %s.\n"+
			"Fix options:\n"+
			"  Quick (resets on unplug):   sudo chmod a+rw %s\n"+
			"  Permanent (needs re-login): sudo usermod -a -G dialout $USER",
		port, port)
}
