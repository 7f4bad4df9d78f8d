// internal/llmclient/router.go
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// Router implements schemas.LLMClient and dispatches each request to the
// client named in the request, or the default. All dispatch shares one rate
// limiter so a multi-model configuration cannot collectively exceed the
// configured call budget.
type Router struct {
	logger       *zap.Logger
	clients      map[string]schemas.LLMClient
	defaultModel string
	limiter      *rate.Limiter
}

var _ schemas.LLMClient = (*Router)(nil)

// NewRouter creates a router over named clients. requestsPerMinute of zero
// disables rate limiting.
func NewRouter(logger *zap.Logger, clients map[string]schemas.LLMClient, defaultModel string, requestsPerMinute float64) (*Router, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("router requires at least one client")
	}
	if _, ok := clients[defaultModel]; !ok {
		return nil, fmt.Errorf("default model %q has no client", defaultModel)
	}

	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), 1)
	}

	return &Router{
		logger:       logger.Named("llm_router"),
		clients:      clients,
		defaultModel: defaultModel,
		limiter:      limiter,
	}, nil
}

// Generate waits for rate-limit headroom, then forwards the request to the
// named (or default) client.
func (r *Router) Generate(ctx context.Context, req schemas.GenerationRequest) (schemas.GenerationResponse, error) {
	model := req.Model
	if model == "" {
		model = r.defaultModel
	}

	client, ok := r.clients[model]
	if !ok {
		return schemas.GenerationResponse{}, fmt.Errorf("no LLM client configured for model %q", model)
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return schemas.GenerationResponse{}, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	r.logger.Debug("Routing LLM request", zap.String("model", model))
	return client.Generate(ctx, req)
}
