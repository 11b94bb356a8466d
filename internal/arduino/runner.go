package arduino

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Result captures one external toolchain invocation: merged stdout/stderr
// in arrival order, the process exit status, and how long it ran.
type Result struct {
	Lines    []string
	ExitCode int
	Duration time.Duration
}

// Output joins the captured lines back into a single blob, mostly for
// error messages.
func (r Result) Output() string {
	return strings.Join(r.Lines, "\n")
}

// Runner executes a single arduino-cli invocation. The exec-backed
// implementation is the only one used in production; tests substitute a
// fake so orchestration logic runs without the real toolchain.
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

// waitDelay bounds how long we wait between context cancellation and a
// forcible kill, so a timed-out upload never leaves an orphaned process
// holding the port.
const waitDelay = 3 * time.Second

// ExecRunner runs arduino-cli as a child process.
type ExecRunner struct {
	cliPath string
	env     []string
	log     zerolog.Logger
}

// NewExecRunner returns a Runner bound to the given arduino-cli
// executable path (see ResolveCLI).
func NewExecRunner(cliPath string, log zerolog.Logger) *ExecRunner {
	return &ExecRunner{cliPath: cliPath, log: log}
}

// Run invokes arduino-cli with the given arguments, capturing stdout and
// stderr merged line by line in the order the tool produced them. The
// context bounds the process lifetime: on cancellation or deadline the
// child is terminated and the error reflects the context state.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, r.cliPath, args...)
	cmd.WaitDelay = waitDelay
	if r.env != nil {
		cmd.Env = r.env
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("arduino-cli pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout // merge stderr into stdout

	r.log.Debug().Strs("args", args).Msg("arduino-cli invoke")

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Result{ExitCode: -1}, fmt.Errorf("%w: %s", ErrToolchainUnavailable, r.cliPath)
		}
		return Result{ExitCode: -1}, fmt.Errorf("arduino-cli start: %w", err)
	}

	var lines []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	waitErr := cmd.Wait()
	res := Result{
		Lines:    lines,
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, ctx.Err()
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil // non-zero exit is a tool result, not an invocation error
		}
		res.ExitCode = -1
		return res, fmt.Errorf("arduino-cli wait: %w", waitErr)
	}

	res.ExitCode = 0
	return res, nil
}
