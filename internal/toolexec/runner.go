// Package toolexec runs external tools (cmake, clang-format, llvm-cov) as
// blocking subprocesses with a timeout.
package toolexec

//go:generate go tool mockgen -source runner.go -destination mock_runner.go -package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/alessio/shellescape"
)

// DefaultTimeout bounds every tool invocation unless overridden.
const DefaultTimeout = 300 * time.Second

var (
	// ErrNotFound is returned when a tool is not on PATH.
	ErrNotFound = errors.New("tool not found")
	// ErrTimeout is returned when a tool runs past its timeout.
	ErrTimeout = errors.New("tool timed out")
)

// Command describes one tool invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// String renders the command as a shell-quoted line for messages.
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Name}, c.Args...))
}

// Result is the outcome of a command that started.
type Result struct {
	ExitCode int
	// Output is stdout and stderr combined, in the order written.
	Output   string
	Duration time.Duration
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool { return r.ExitCode == 0 }

// Runner runs commands and looks tools up.
type Runner interface {
	// Run executes cmd. A non-zero exit is reported in the Result, not as an
	// error; errors mean the command could not be started, timed out, or was
	// canceled.
	Run(ctx context.Context, cmd Command) (*Result, error)
	// LookPath returns the resolved path of a tool, or an error wrapping
	// ErrNotFound.
	LookPath(name string) (string, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	// Timeout overrides DefaultTimeout when > 0.
	Timeout time.Duration
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner returns an ExecRunner with the given timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

func (r *ExecRunner) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultTimeout
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	//nolint:gosec // commands come from the project configuration, not untrusted input
	cmd := exec.CommandContext(timeoutCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	slog.Debug("running tool", "command", c.String(), "dir", c.Dir)
	start := time.Now()
	err := cmd.Run()
	res := &Result{Output: out.String(), Duration: time.Since(start)}

	if err != nil {
		// Parent cancellation wins over the timeout so interrupts are reported as such.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", c, ctxErr)
		}
		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w after %s", c, ErrTimeout, r.timeout())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			slog.Debug("tool exited non-zero", "command", c.String(), "exitCode", res.ExitCode)
			return res, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", c, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", c, err)
	}
	return res, nil
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return p, nil
}
