// internal/runner/runner.go
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/config"
	"github.com/xkilldash9x/oxtest-cli/internal/decompose"
)

// Allows for mocking in tests.
var uuidNewString = uuid.NewString

// Runner orchestrates one suite: for each test it decomposes the instruction
// and executes the resulting commands, collecting results for the reporters.
type Runner struct {
	logger   *zap.Logger
	mode     config.DecomposerMode
	engine   *decompose.Engine
	executor schemas.CommandExecutor

	// recorder is non-nil only in execute-observe-plan mode, where it is the
	// same value the engine executes through.
	recorder *recordingExecutor
}

// New builds a runner. In execute-observe-plan mode the executor passed here
// must be the same recording executor wired into the engine; use NewForMode
// to get that wiring right.
func New(logger *zap.Logger, mode config.DecomposerMode, engine *decompose.Engine, executor schemas.CommandExecutor, recorder *recordingExecutor) *Runner {
	return &Runner{
		logger:   logger.Named("runner"),
		mode:     mode,
		engine:   engine,
		executor: executor,
		recorder: recorder,
	}
}

// NewForMode wires the engine and runner together for the configured mode.
// Three-pass keeps decomposition and execution separate; execute-observe-plan
// threads a recording executor through the engine so the runner can still
// report per-step outcomes.
func NewForMode(logger *zap.Logger, cfg config.DecomposerConfig, deps decompose.Collaborators) (*Runner, error) {
	var recorder *recordingExecutor
	executor := deps.Executor

	if cfg.Mode == config.ModeEOP {
		if deps.Executor == nil {
			return nil, fmt.Errorf("execute-observe-plan mode requires a command executor")
		}
		recorder = newRecordingExecutor(deps.Executor)
		deps.Executor = recorder
	}

	engine, err := decompose.NewEngine(logger, cfg, deps)
	if err != nil {
		return nil, err
	}
	return New(logger, cfg.Mode, engine, executor, recorder), nil
}

// Run executes every test in the suite sequentially and returns the
// aggregated result. Individual test failures do not stop the suite; only a
// context cancellation does.
func (r *Runner) Run(ctx context.Context, suite *Suite) (schemas.SuiteResult, error) {
	result := schemas.SuiteResult{
		RunID:     uuidNewString(),
		SuiteName: suite.Name,
		StartedAt: time.Now(),
	}

	r.logger.Info("Suite started",
		zap.String("run_id", result.RunID),
		zap.String("suite", suite.Name),
		zap.Int("tests", len(suite.Tests)))

	for _, spec := range suite.Tests {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		testResult := r.runTest(ctx, suite, spec)
		result.Tests = append(result.Tests, testResult)

		r.logger.Info("Test finished",
			zap.String("test", spec.Name),
			zap.Bool("passed", testResult.Passed),
			zap.Duration("duration", testResult.Duration))
	}

	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	return result, nil
}

func (r *Runner) runTest(ctx context.Context, suite *Suite, spec TestSpec) schemas.TestResult {
	start := time.Now()
	testResult := schemas.TestResult{
		Name:        spec.Name,
		Instruction: spec.Instruction,
	}

	if suite.BaseURL != "" && r.executor != nil {
		if err := r.navigateToBase(ctx, suite.BaseURL); err != nil {
			testResult.Error = err.Error()
			testResult.Duration = time.Since(start)
			return testResult
		}
	}

	switch r.mode {
	case config.ModeEOP:
		r.runEOP(ctx, spec, &testResult)
	default:
		r.runThreePass(ctx, spec, &testResult)
	}

	testResult.Duration = time.Since(start)
	return testResult
}

// runThreePass decomposes first, then executes the commands in order. The
// first failing step fails the test and skips the rest; executing past a
// failed click would act on a page in an unknown state.
func (r *Runner) runThreePass(ctx context.Context, spec TestSpec, testResult *schemas.TestResult) {
	decomposition, err := r.engine.Decompose(ctx, spec.Instruction)
	if err != nil {
		testResult.Error = fmt.Sprintf("decomposition failed: %v", err)
		return
	}

	if r.executor == nil {
		// Decompose-only run: the commands themselves are the deliverable.
		testResult.Passed = true
		for _, cmd := range decomposition.Commands {
			testResult.Steps = append(testResult.Steps, schemas.StepResult{
				Command: cmd,
				Status:  schemas.StepSkipped,
			})
		}
		return
	}

	failed := false
	for _, cmd := range decomposition.Commands {
		if failed {
			testResult.Steps = append(testResult.Steps, schemas.StepResult{
				Command: cmd,
				Status:  schemas.StepSkipped,
			})
			continue
		}

		stepStart := time.Now()
		execResult, err := r.executor.Execute(ctx, cmd)
		step := schemas.StepResult{
			Command:  cmd,
			Duration: time.Since(stepStart),
		}
		switch {
		case err != nil:
			step.Status = schemas.StepFailed
			step.Error = err.Error()
			failed = true
		case execResult.Success:
			step.Status = schemas.StepPassed
		default:
			step.Status = schemas.StepFailed
			step.Error = execResult.Error
			failed = true
		}
		testResult.Steps = append(testResult.Steps, step)
	}

	testResult.Passed = !failed
}

// runEOP lets the engine drive execution; the recording executor captures
// what actually ran.
func (r *Runner) runEOP(ctx context.Context, spec TestSpec, testResult *schemas.TestResult) {
	_, err := r.engine.DecomposeWithExecution(ctx, spec.Instruction)
	testResult.Steps = r.recorder.drain()

	if err != nil {
		testResult.Error = fmt.Sprintf("decomposition failed: %v", err)
		return
	}

	testResult.Passed = true
	for _, step := range testResult.Steps {
		if step.Status == schemas.StepFailed {
			testResult.Passed = false
			break
		}
	}
}

func (r *Runner) navigateToBase(ctx context.Context, baseURL string) error {
	result, err := r.executor.Execute(ctx, schemas.StructuredCommand{
		Kind:   schemas.KindNavigate,
		Params: map[string]string{"url": baseURL},
	})
	if err != nil {
		return fmt.Errorf("navigation to base URL failed: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("navigation to base URL failed: %s", result.Error)
	}
	return nil
}
