// internal/llmclient/factory.go
package llmclient

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/config"
)

// NewClient builds a client for every configured model and returns a router
// dispatching among them, rate-limited as a group.
func NewClient(cfg config.LLMRouterConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("no LLM models configured under llm.models")
	}

	clients := make(map[string]schemas.LLMClient, len(cfg.Models))
	for name, modelCfg := range cfg.Models {
		var client schemas.LLMClient
		var err error
		switch modelCfg.Provider {
		case config.ProviderGemini:
			client, err = NewGeminiClient(modelCfg, logger)
		case config.ProviderOpenAI:
			client, err = NewOpenAIClient(modelCfg, logger)
		default:
			return nil, fmt.Errorf("unknown LLM provider %q for model %q", modelCfg.Provider, name)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client for model %q: %w", name, err)
		}
		clients[name] = client
		logger.Info("Instantiated LLM client",
			zap.String("name", name),
			zap.String("provider", string(modelCfg.Provider)),
			zap.String("model", modelCfg.Model))
	}

	if _, ok := clients[cfg.DefaultModel]; !ok {
		return nil, fmt.Errorf("default model %q not found in defined models", cfg.DefaultModel)
	}

	return NewRouter(logger, clients, cfg.DefaultModel, cfg.RequestsPerMinute)
}
