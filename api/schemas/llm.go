// api/schemas/llm.go
package schemas

import (
	"errors"
	"fmt"
)

// MessageRole distinguishes who produced a conversation turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of LLM conversation history. History values are
// append-only: callers build a new slice per turn rather than mutating a
// shared one, so the ordering of a decomposition stays auditable.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// GenerationRequest carries one prompt to an LLM provider.
type GenerationRequest struct {
	SystemPrompt string    `json:"system_prompt"`
	UserPrompt   string    `json:"user_prompt"`
	History      []Message `json:"history,omitempty"`

	// Model overrides the client's configured model when non-empty.
	Model string `json:"model,omitempty"`

	// Temperature of 0 is meaningful (deterministic), so the zero value is
	// the sane default for command generation.
	Temperature float32 `json:"temperature,omitempty"`
}

// TokenUsage reports the provider's token accounting for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResponse is the provider-agnostic result of one LLM call.
type GenerationResponse struct {
	Content      string     `json:"content"`
	Usage        TokenUsage `json:"usage"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// TransientError wraps an LLM failure that is eligible for automatic retry
// (rate limiting, 5xx, dropped connections). Anything not wrapped in it is
// treated as fatal and propagates out of decomposition immediately.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient llm error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
