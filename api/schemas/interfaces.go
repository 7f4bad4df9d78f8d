// api/schemas/interfaces.go
package schemas

import "context"

// PageStateProvider returns a textual snapshot of the live page at the
// requested fidelity. Implementations must return current state on every
// call and never cache; staleness is exactly the bug the decomposition
// engine is built to avoid.
type PageStateProvider interface {
	Extract(ctx context.Context, fidelity SnapshotFidelity) (DomSnapshot, error)
}

// LLMClient is the capability the decomposition engine needs from a language
// model: given prompts (and optional history), return generated text with
// usage metadata. Failures are either transient (wrapped in TransientError)
// or fatal.
type LLMClient interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResponse, error)
}

// CommandParser turns LLM-emitted text into structured commands. Malformed
// input yields an error; the engine recovers locally and never propagates
// raw parse errors out of decomposition.
type CommandParser interface {
	Parse(text string) ([]StructuredCommand, error)
}

// CommandExecutor performs one command against the live page. Ordinary
// execution failures are reported via the result, not the error; the error
// return is reserved for programmer-error conditions (nil session, unknown
// command kind escaping the closed enum).
type CommandExecutor interface {
	Execute(ctx context.Context, cmd StructuredCommand) (ExecutionResult, error)
}
