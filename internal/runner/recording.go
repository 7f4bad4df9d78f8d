// internal/runner/recording.go
package runner

import (
	"context"
	"time"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// recordingExecutor decorates a real executor so the runner can report
// per-step outcomes in execute-observe-plan mode, where execution happens
// inside the decomposition engine and failures are absorbed there.
type recordingExecutor struct {
	inner schemas.CommandExecutor
	steps []schemas.StepResult
}

var _ schemas.CommandExecutor = (*recordingExecutor)(nil)

func newRecordingExecutor(inner schemas.CommandExecutor) *recordingExecutor {
	return &recordingExecutor{inner: inner}
}

// Execute delegates and records one step result per call.
func (r *recordingExecutor) Execute(ctx context.Context, cmd schemas.StructuredCommand) (schemas.ExecutionResult, error) {
	start := time.Now()
	result, err := r.inner.Execute(ctx, cmd)
	duration := time.Since(start)

	step := schemas.StepResult{
		Command:  cmd,
		Duration: duration,
	}
	switch {
	case err != nil:
		step.Status = schemas.StepFailed
		step.Error = err.Error()
	case result.Success:
		step.Status = schemas.StepPassed
	default:
		step.Status = schemas.StepFailed
		step.Error = result.Error
	}
	r.steps = append(r.steps, step)

	return result, err
}

// drain returns the recorded steps and resets the recorder for the next test.
func (r *recordingExecutor) drain() []schemas.StepResult {
	steps := r.steps
	r.steps = nil
	return steps
}
