package driven

import "context"

// LLMService generates text completions for query analysis and answer
// composition. Implementations are optional; callers must tolerate the
// service being absent and fall back to heuristics.
type LLMService interface {
	// Complete sends a system prompt and a user prompt and returns the
	// model's text response.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Ping verifies the LLM service is reachable
	Ping(ctx context.Context) error

	// Close releases resources held by the service
	Close() error
}
