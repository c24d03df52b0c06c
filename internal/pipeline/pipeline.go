// Package pipeline runs an ordered list of named steps, each with a declared
// failure policy.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrAborted is returned by Run when an Abort step (or a Verify gate) fails.
var ErrAborted = errors.New("pipeline aborted")

// Policy says what a failed step does to the rest of the pipeline.
type Policy int

const (
	// Abort stops the pipeline; later steps are skipped.
	Abort Policy = iota
	// Continue records the failure and runs the remaining steps.
	Continue
	// Soft logs a warning; the failure does not affect the outcome.
	Soft
)

func (p Policy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Continue:
		return "continue"
	case Soft:
		return "soft"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Status is the outcome of a single step.
type Status string

const (
	StatusPassed     Status = "passed"
	StatusFailed     Status = "failed"
	StatusSoftFailed Status = "soft-failed"
	StatusSkipped    Status = "skipped"
)

// Step is one named stage of a pipeline.
type Step struct {
	Name   string
	Policy Policy
	// Run does the work. A nil Run always succeeds.
	Run func(ctx context.Context) error
	// Verify, if set, runs after Run whatever Run returned. Its failure
	// aborts the pipeline regardless of Policy; use it to require an
	// artifact that a tolerated non-zero exit may still have produced.
	Verify func(ctx context.Context) error
	// When, if set, decides at run time whether the step applies. Steps
	// that do not apply are reported as skipped.
	When func() bool
}

// StepResult records what happened to a step.
type StepResult struct {
	Name     string
	Status   Status
	Err      error
	Duration time.Duration
}

// Result is the ordered outcome of a pipeline run.
type Result struct {
	Steps   []StepResult
	Aborted bool
}

// Passed reports whether no step failed and the pipeline ran to completion.
func (r *Result) Passed() bool {
	if r.Aborted {
		return false
	}
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Step returns the result recorded for name.
func (r *Result) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Pipeline is an ordered list of steps.
type Pipeline struct {
	Name  string
	Steps []Step
}

// New returns a pipeline with the given steps.
func New(name string, steps ...Step) *Pipeline {
	return &Pipeline{Name: name, Steps: steps}
}

// Run executes the steps in order.
//
// The returned error wraps ErrAborted when an Abort step or a Verify gate
// failed, or the context error when ctx was canceled. Continue and Soft
// failures are only visible in the Result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{Steps: make([]StepResult, 0, len(p.Steps))}

	var stopErr error
	for _, step := range p.Steps {
		if stopErr == nil {
			if err := ctx.Err(); err != nil {
				stopErr = err
				res.Aborted = true
			}
		}
		if stopErr != nil || (step.When != nil && !step.When()) {
			res.Steps = append(res.Steps, StepResult{Name: step.Name, Status: StatusSkipped})
			continue
		}

		sr := p.runStep(ctx, step)
		res.Steps = append(res.Steps, sr)

		if sr.Status != StatusFailed {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			stopErr = ctxErr
			res.Aborted = true
			continue
		}
		if step.Policy == Abort || errors.Is(sr.Err, errVerify) {
			stopErr = fmt.Errorf("%s: step %q: %w", p.Name, step.Name, errors.Join(ErrAborted, sr.Err))
			res.Aborted = true
		}
	}

	return res, stopErr
}

var errVerify = errors.New("verification failed")

func (p *Pipeline) runStep(ctx context.Context, step Step) StepResult {
	start := time.Now()
	var err error
	if step.Run != nil {
		err = step.Run(ctx)
	}
	sr := StepResult{Name: step.Name, Status: StatusPassed, Err: err}

	if err != nil {
		sr.Status = StatusFailed
		if step.Policy == Soft && ctx.Err() == nil {
			sr.Status = StatusSoftFailed
		}
	}

	if step.Verify != nil && ctx.Err() == nil {
		if verr := step.Verify(ctx); verr != nil {
			sr.Status = StatusFailed
			sr.Err = errors.Join(errVerify, verr)
		}
	}
	sr.Duration = time.Since(start)

	slog.Debug("pipeline step finished",
		"pipeline", p.Name, "step", step.Name, "policy", step.Policy.String(),
		"status", string(sr.Status), "duration", sr.Duration, "err", sr.Err)

	return sr
}
