package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckFailureError(t *testing.T) {
	err := &CheckFailureError{
		Message: "header-guards: 2 of 5 file(s) failed",
	}

	assert.Equal(t, "header-guards: 2 of 5 file(s) failed", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       int
		wantStderr string
	}{
		{name: "success", err: nil, want: ExitSuccess},
		{name: "check failure", err: &CheckFailureError{Message: "todos: 1 of 1 file(s) failed"}, want: ExitCheckFailed},
		{name: "wrapped check failure", err: fmt.Errorf("running: %w", &CheckFailureError{Message: "x"}), want: ExitCheckFailed},
		{name: "joined check failure", err: errors.Join(&CheckFailureError{Message: "x"}, errors.New("more")), want: ExitCheckFailed},
		{name: "config error", err: errors.New("invalid .conform.yaml"), want: ExitError, wantStderr: "invalid .conform.yaml\n"},
		{name: "interrupted", err: &InterruptedError{Err: context.Canceled}, want: ExitInterrupted, wantStderr: "\n⚠ Interrupted by user\n"},
		{name: "bare cancellation", err: fmt.Errorf("cmake: %w", context.Canceled), want: ExitInterrupted, wantStderr: "\n⚠ Interrupted by user\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.want, exitCode(tt.err, &stderr))
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}

func TestInterruptedErrorUnwraps(t *testing.T) {
	err := &InterruptedError{Err: context.Canceled}
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Interrupted by user", err.Error())
}
