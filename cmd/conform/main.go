package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0   // All checks passed, or nothing to check
	ExitCheckFailed = 1   // A check or pipeline step failed
	ExitError       = 2   // Usage or configuration error
	ExitInterrupted = 130 // Interrupted by the user
)

// CheckFailureError indicates that the command ran to completion but at
// least one file or pipeline step failed.
type CheckFailureError struct {
	Message string
}

func (e *CheckFailureError) Error() string {
	return e.Message
}

// InterruptedError indicates the command was canceled by SIGINT or SIGTERM.
type InterruptedError struct {
	Err error
}

func (e *InterruptedError) Error() string {
	return "Interrupted by user"
}

func (e *InterruptedError) Unwrap() error { return e.Err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode maps err to the process exit status. Usage errors and interrupts
// are reported on stderr; check failures are not.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitSuccess
	}

	var interrupted *InterruptedError
	if errors.As(err, &interrupted) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr)                         //nolint:errcheck
		fmt.Fprintln(stderr, "⚠ Interrupted by user") //nolint:errcheck
		return ExitInterrupted
	}

	// The report on stdout already describes a check failure.
	var checkFailureErr *CheckFailureError
	if errors.As(err, &checkFailureErr) {
		slog.Debug("check failed", "error", err)
		return ExitCheckFailed
	}

	// All other errors are usage/configuration errors
	fmt.Fprintln(stderr, err) //nolint:errcheck
	return ExitError
}
