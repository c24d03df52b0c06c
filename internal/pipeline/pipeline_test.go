package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func ok(calls *[]string, name string) func(context.Context) error {
	return func(context.Context) error {
		*calls = append(*calls, name)
		return nil
	}
}

func fail(calls *[]string, name string) func(context.Context) error {
	return func(context.Context) error {
		*calls = append(*calls, name)
		return errBoom
	}
}

func statuses(r *Result) []Status {
	out := make([]Status, 0, len(r.Steps))
	for _, s := range r.Steps {
		out = append(out, s.Status)
	}
	return out
}

func TestPipelineAllPass(t *testing.T) {
	var calls []string
	p := New("test",
		Step{Name: "a", Run: ok(&calls, "a")},
		Step{Name: "b", Policy: Soft, Run: ok(&calls, "b")},
		Step{Name: "c", Policy: Continue, Run: ok(&calls, "c")},
	)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Passed())
	require.Equal(t, []string{"a", "b", "c"}, calls)
	require.Equal(t, []Status{StatusPassed, StatusPassed, StatusPassed}, statuses(res))
}

func TestPipelineAbortSkipsRemaining(t *testing.T) {
	var calls []string
	p := New("coverage",
		Step{Name: "validate", Run: ok(&calls, "validate")},
		Step{Name: "configure", Policy: Abort, Run: fail(&calls, "configure")},
		Step{Name: "build", Run: ok(&calls, "build")},
	)
	res, err := p.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrAborted)
	require.ErrorIs(t, err, errBoom)
	require.Contains(t, err.Error(), `step "configure"`)
	require.True(t, res.Aborted)
	require.False(t, res.Passed())
	require.Equal(t, []string{"validate", "configure"}, calls)
	require.Equal(t, []Status{StatusPassed, StatusFailed, StatusSkipped}, statuses(res))
}

func TestPipelineSoftFailureIsTolerated(t *testing.T) {
	var calls []string
	p := New("coverage",
		Step{Name: "coverage-clean", Policy: Soft, Run: fail(&calls, "coverage-clean")},
		Step{Name: "summary", Policy: Soft, Run: ok(&calls, "summary")},
	)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Passed())
	require.Equal(t, []Status{StatusSoftFailed, StatusPassed}, statuses(res))

	s, found := res.Step("coverage-clean")
	require.True(t, found)
	require.ErrorIs(t, s.Err, errBoom)
}

func TestPipelineContinueRecordsFailure(t *testing.T) {
	var calls []string
	p := New("quality",
		Step{Name: "format", Policy: Continue, Run: fail(&calls, "format")},
		Step{Name: "tidy", Policy: Continue, Run: ok(&calls, "tidy")},
	)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, res.Passed())
	require.False(t, res.Aborted)
	require.Equal(t, []string{"format", "tidy"}, calls)
	require.Equal(t, []Status{StatusFailed, StatusPassed}, statuses(res))
}

func TestPipelineVerifyGatesSoftStep(t *testing.T) {
	tests := []struct {
		name      string
		runErr    error
		verifyErr error
		want      Status
		aborted   bool
	}{
		{"run ok, artifact present", nil, nil, StatusPassed, false},
		{"run failed, artifact present", errBoom, nil, StatusSoftFailed, false},
		{"run ok, artifact missing", nil, errors.New("index.html missing"), StatusFailed, true},
		{"run failed, artifact missing", errBoom, errors.New("index.html missing"), StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var after bool
			p := New("coverage",
				Step{
					Name:   "coverage-html",
					Policy: Soft,
					Run:    func(context.Context) error { return tt.runErr },
					Verify: func(context.Context) error { return tt.verifyErr },
				},
				Step{Name: "summary", Run: func(context.Context) error { after = true; return nil }},
			)
			res, err := p.Run(context.Background())
			require.Equal(t, tt.want, res.Steps[0].Status)
			require.Equal(t, tt.aborted, res.Aborted)
			require.Equal(t, !tt.aborted, after)
			if tt.aborted {
				require.ErrorIs(t, err, ErrAborted)
				require.ErrorIs(t, err, tt.verifyErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPipelineWhenSkips(t *testing.T) {
	var calls []string
	p := New("coverage",
		Step{Name: "clean", When: func() bool { return false }, Run: ok(&calls, "clean")},
		Step{Name: "build", When: func() bool { return true }, Run: ok(&calls, "build")},
	)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Passed())
	require.Equal(t, []string{"build"}, calls)
	require.Equal(t, []Status{StatusSkipped, StatusPassed}, statuses(res))
}

func TestPipelineCanceledBeforeStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls []string
	p := New("coverage",
		Step{Name: "validate", Run: func(context.Context) error { calls = append(calls, "validate"); cancel(); return nil }},
		Step{Name: "build", Run: ok(&calls, "build")},
	)
	res, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrAborted)
	require.True(t, res.Aborted)
	require.Equal(t, []string{"validate"}, calls)
	require.Equal(t, []Status{StatusPassed, StatusSkipped}, statuses(res))
}

func TestPipelineCanceledDuringSoftStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New("coverage",
		Step{Name: "coverage-clean", Policy: Soft, Run: func(ctx context.Context) error {
			cancel()
			return ctx.Err()
		}},
		Step{Name: "summary", Policy: Soft},
	)
	res, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []Status{StatusFailed, StatusSkipped}, statuses(res))
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "abort", Abort.String())
	assert.Equal(t, "continue", Continue.String())
	assert.Equal(t, "soft", Soft.String())
	assert.Equal(t, "Policy(9)", Policy(9).String())
}

func TestWriteTable(t *testing.T) {
	res := &Result{Steps: []StepResult{
		{Name: "validate", Status: StatusPassed, Duration: 12 * time.Millisecond},
		{Name: "coverage-html", Status: StatusSoftFailed, Duration: 2340 * time.Millisecond},
		{Name: "summary", Status: StatusSkipped},
	}}
	var buf bytes.Buffer
	require.NoError(t, res.WriteTable(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Step           Status       Time", lines[0])
	assert.Equal(t, "validate       passed       12ms", lines[2])
	assert.Equal(t, "coverage-html  soft-failed  2.3s", lines[3])
	assert.Equal(t, "summary        skipped      -", lines[4])
}
