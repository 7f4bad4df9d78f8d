// internal/llmclient/errors.go
package llmclient

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// classifyHTTPError sorts a non-200 provider status into the retry taxonomy:
// 429, 5xx and responses carrying known transient signatures are retried;
// auth failures, malformed requests and quota exhaustion are permanent and
// propagate immediately.
func classifyHTTPError(logger *zap.Logger, provider string, statusCode int, body []byte) error {
	logger.Error("LLM API returned error status",
		zap.String("provider", provider),
		zap.Int("status", statusCode),
		zap.String("response", string(body)))

	err := fmt.Errorf("%s API error: status %d, body: %s", provider, statusCode, string(body))

	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable,
		http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &schemas.TransientError{Err: err}
	}

	if hasTransientSignature(string(body)) {
		return &schemas.TransientError{Err: err}
	}
	return backoff.Permanent(err)
}

// transientSignatures are body fragments some providers return with an
// otherwise non-retryable status for conditions that do clear up on retry.
var transientSignatures = []string{
	"rate limit",
	"terminated",
	"overloaded",
	"try again later",
}

func hasTransientSignature(body string) bool {
	lower := strings.ToLower(body)
	for _, sig := range transientSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
