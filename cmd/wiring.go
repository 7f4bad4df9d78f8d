// -- cmd/wiring.go --
package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/internal/browser"
	"github.com/xkilldash9x/oxtest-cli/internal/config"
	"github.com/xkilldash9x/oxtest-cli/internal/decompose"
	"github.com/xkilldash9x/oxtest-cli/internal/llmclient"
	"github.com/xkilldash9x/oxtest-cli/internal/oxtest"
)

// stack is everything a command needs to decompose and execute instructions.
type stack struct {
	session *browser.Session
	deps    decompose.Collaborators
}

// buildStack launches the browser and wires the collaborators. The caller
// owns the session and must close it.
func buildStack(ctx context.Context, logger *zap.Logger, cfg *config.Config) (*stack, error) {
	llm, err := llmclient.NewClient(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM client: %w", err)
	}

	session, err := browser.NewSession(ctx, logger, cfg.Browser)
	if err != nil {
		return nil, err
	}

	return &stack{
		session: session,
		deps: decompose.Collaborators{
			Provider: browser.NewSnapshotProvider(logger, session),
			LLM:      llm,
			Parser:   oxtest.NewParser(),
			Executor: browser.NewExecutor(logger, session, cfg.Browser),
		},
	}, nil
}

func (s *stack) Close() {
	s.session.Close()
}

func newEngine(logger *zap.Logger, deps decompose.Collaborators) (*decompose.Engine, error) {
	return decompose.NewEngine(logger, appCfg.Decomposer, deps)
}
