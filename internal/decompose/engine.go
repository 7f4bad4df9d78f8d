// internal/decompose/engine.go
package decompose

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/config"
)

// Allows for mocking in tests.
var uuidNewString = uuid.NewString

// Collaborators bundles the external capabilities the engine orchestrates.
// Executor may be nil when only three-pass decomposition is used.
type Collaborators struct {
	Provider schemas.PageStateProvider
	LLM      schemas.LLMClient
	Parser   schemas.CommandParser
	Executor schemas.CommandExecutor
}

// Engine turns one natural-language instruction into a validated, ordered
// sequence of structured commands. It is stateless across instructions;
// the only per-instruction state (conversation history in EOP mode) lives
// on the stack of each call. All configuration arrives explicitly through
// DecomposerConfig; the engine never reads the environment.
type Engine struct {
	logger    *zap.Logger
	cfg       config.DecomposerConfig
	deps      Collaborators
	prompts   PromptBuilder
	validator Validator
	fidelity  schemas.SnapshotFidelity
}

// NewEngine wires a decomposition engine from explicit configuration and
// collaborators.
func NewEngine(logger *zap.Logger, cfg config.DecomposerConfig, deps Collaborators) (*Engine, error) {
	if deps.Provider == nil {
		return nil, errors.New("page state provider is required")
	}
	if deps.LLM == nil {
		return nil, errors.New("llm client is required")
	}
	if deps.Parser == nil {
		return nil, errors.New("command parser is required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}

	fidelity := schemas.SnapshotFidelity(cfg.Fidelity)
	if fidelity == "" {
		fidelity = schemas.FidelitySimplified
	}

	return &Engine{
		logger:    logger.Named("decompose"),
		cfg:       cfg,
		deps:      deps,
		prompts:   NewPromptBuilder(cfg.DomCharBudget),
		validator: NewValidator(),
		fidelity:  fidelity,
	}, nil
}

// noopWait is the command substituted when the model's output cannot be
// parsed: the pipeline must keep producing one command per step.
func noopWait() schemas.StructuredCommand {
	return schemas.StructuredCommand{
		Kind:   schemas.KindWait,
		Params: map[string]string{"timeout": "1000"},
	}
}

// Decompose runs the three-pass mode: plan the instruction into steps, then
// generate and validate one command per step against fresh snapshots,
// refining on validation failure within the attempt budget. Nothing is
// executed; the page is only read. Commands that never validated are still
// committed, marked Degraded, since dropping a step would be worse than emitting
// a command the cheap string-level validator could not confirm.
func (e *Engine) Decompose(ctx context.Context, instruction string) (schemas.DecompositionResult, error) {
	result := schemas.DecompositionResult{
		ID:          uuidNewString(),
		Instruction: instruction,
	}

	plan, err := e.plan(ctx, instruction)
	if err != nil {
		return result, err
	}
	e.logger.Info("Instruction planned",
		zap.String("decomposition_id", result.ID),
		zap.Int("steps", len(plan)))

	for i, step := range plan {
		cmd, err := e.generateStep(ctx, instruction, step)
		if err != nil {
			return result, fmt.Errorf("step %d (%q): %w", i+1, step, err)
		}
		result.Commands = append(result.Commands, cmd)
	}

	return result, nil
}

// plan produces the ordered step list for an instruction. A planning
// response with no parseable steps degrades to a single-step plan holding
// the instruction verbatim; that is policy, not failure.
func (e *Engine) plan(ctx context.Context, instruction string) ([]string, error) {
	snap, err := e.deps.Provider.Extract(ctx, e.fidelity)
	if err != nil {
		return nil, fmt.Errorf("snapshot for planning: %w", err)
	}

	resp, err := e.deps.LLM.Generate(ctx, e.prompts.BuildPlanning(instruction, snap))
	if err != nil {
		return nil, fmt.Errorf("planning generation: %w", err)
	}

	steps := parseSteps(resp.Content)
	if len(steps) == 0 {
		e.logger.Warn("Planning yielded no parseable steps, using instruction as single step")
		return []string{instruction}, nil
	}
	return steps, nil
}

// generateStep produces one command for one step: generate, validate,
// refine up to the attempt budget. The snapshot is re-fetched for the
// generation of each step (the DOM may have changed in a real run), but a
// refinement deliberately sees the same snapshot its validation failed
// against.
func (e *Engine) generateStep(ctx context.Context, instruction, step string) (schemas.StructuredCommand, error) {
	snap, err := e.deps.Provider.Extract(ctx, e.fidelity)
	if err != nil {
		return schemas.StructuredCommand{}, fmt.Errorf("snapshot for generation: %w", err)
	}

	resp, err := e.deps.LLM.Generate(ctx, e.prompts.BuildGeneration(step, instruction, snap))
	if err != nil {
		return schemas.StructuredCommand{}, fmt.Errorf("command generation: %w", err)
	}

	cmd, ok := e.parseSingle(resp.Content)
	if !ok {
		e.logger.Warn("Unparseable generation response, substituting wait",
			zap.String("step", step),
			zap.String("response", resp.Content))
		cmd = noopWait()
	}
	lastText := resp.Content

	for attempt := 1; ; attempt++ {
		outcome := e.validator.Validate(cmd, snap)
		if outcome.Valid {
			return cmd, nil
		}

		if attempt >= e.cfg.MaxAttempts {
			e.logger.Warn("Refinement budget exhausted, committing best-effort command",
				zap.String("step", step),
				zap.Int("attempts", attempt),
				zap.Strings("issues", outcome.Issues))
			cmd.Degraded = true
			return cmd, nil
		}

		e.logger.Debug("Command failed validation, refining",
			zap.String("step", step),
			zap.Int("attempt", attempt),
			zap.Strings("issues", outcome.Issues))

		resp, err := e.deps.LLM.Generate(ctx, e.prompts.BuildRefinement(lastText, outcome.Issues, snap))
		if err != nil {
			return schemas.StructuredCommand{}, fmt.Errorf("refinement generation: %w", err)
		}

		if refined, ok := e.parseSingle(resp.Content); ok {
			cmd = refined
			lastText = resp.Content
		} else {
			// Keep the previous command; the failed parse still burns an
			// attempt so a misbehaving model cannot loop forever.
			e.logger.Warn("Unparseable refinement response, keeping previous command",
				zap.String("step", step),
				zap.String("response", resp.Content))
		}
	}
}

// parseSingle parses an LLM response expected to contain exactly one
// command. Extra commands beyond the first are discarded with a log entry.
func (e *Engine) parseSingle(text string) (schemas.StructuredCommand, bool) {
	cmds, err := e.deps.Parser.Parse(text)
	if err != nil || len(cmds) == 0 {
		return schemas.StructuredCommand{}, false
	}
	if len(cmds) > 1 {
		e.logger.Debug("Model emitted multiple commands for a single step, keeping the first",
			zap.Int("count", len(cmds)))
	}
	return cmds[0], true
}
