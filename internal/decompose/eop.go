// internal/decompose/eop.go
package decompose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// DecomposeWithExecution runs the execute-observe-plan mode: each generated
// command is executed immediately, so the next prompt is built from truly
// current DOM state. There is no separate validation phase; correctness is
// enforced by only ever generating against state just observed. The cost is
// a live, mutable page for the whole decomposition; the payoff is that
// commands targeting elements which only exist after an earlier click or
// navigation stop being systematically unfixable.
func (e *Engine) DecomposeWithExecution(ctx context.Context, instruction string) (schemas.DecompositionResult, error) {
	if e.deps.Executor == nil {
		return schemas.DecompositionResult{}, errors.New("execute-observe-plan mode requires a command executor")
	}

	result := schemas.DecompositionResult{
		ID:          uuidNewString(),
		Instruction: instruction,
	}

	// Conversation history is scoped to this call: a fresh instruction
	// always starts with an empty history, even on a reused engine. Each
	// turn appends to a capacity-clamped slice so no iteration can mutate
	// a turn a previous iteration already published.
	var history []schemas.Message

	for iteration := 0; iteration < e.cfg.MaxIterations; iteration++ {
		snap, err := e.deps.Provider.Extract(ctx, e.fidelity)
		if err != nil {
			return result, fmt.Errorf("iteration %d snapshot: %w", iteration+1, err)
		}

		resp, err := e.deps.LLM.Generate(ctx, e.prompts.BuildStepwise(instruction, snap, history))
		if err != nil {
			return result, fmt.Errorf("iteration %d generation: %w", iteration+1, err)
		}

		if strings.Contains(resp.Content, CompletionToken) {
			e.logger.Info("Model signalled completion",
				zap.String("decomposition_id", result.ID),
				zap.Int("iterations", iteration))
			return result, nil
		}

		cmds, err := e.deps.Parser.Parse(resp.Content)
		if err != nil || len(cmds) == 0 {
			// Nothing parseable is treated as implicit completion, not an
			// error; the model has run out of things to propose.
			e.logger.Info("No parseable command, treating as implicit completion",
				zap.String("decomposition_id", result.ID),
				zap.NamedError("parse_error", err))
			return result, nil
		}
		cmd := cmds[0]

		history = append(history[:len(history):len(history)], schemas.Message{
			Role:    schemas.RoleAssistant,
			Content: resp.Content,
		})

		// A pure wait after at least one committed command is the model
		// stalling with nothing left to do: an explicit stop signal, neither
		// executed nor committed. A wait as the very first command is a
		// legitimate action and runs normally.
		if cmd.IsWait() && len(result.Commands) > 0 {
			e.logger.Info("Wait received after prior commands, treating as stop signal",
				zap.String("decomposition_id", result.ID))
			return result, nil
		}

		execResult, err := e.deps.Executor.Execute(ctx, cmd)
		if err != nil {
			return result, fmt.Errorf("iteration %d execution: %w", iteration+1, err)
		}
		if !execResult.Success {
			// A single failed action does not void the decomposition; the
			// next observation sees whatever state the failure left behind.
			e.logger.Warn("Command execution failed, continuing",
				zap.String("decomposition_id", result.ID),
				zap.String("kind", string(cmd.Kind)),
				zap.String("error", execResult.Error))
		}

		result.Commands = append(result.Commands, cmd)
	}

	e.logger.Warn("Iteration cap reached before completion signal",
		zap.String("decomposition_id", result.ID),
		zap.Int("max_iterations", e.cfg.MaxIterations))
	return result, nil
}
