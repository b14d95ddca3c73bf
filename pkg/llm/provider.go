// Package llm provides the completion-provider contract consumed by the
// realtime workflow engine, plus an HTTP client implementation speaking the
// OpenAI-compatible and Anthropic wire formats.
package llm

import (
	"context"
	"fmt"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Usage carries token counts reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Total returns the combined token count.
func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Completion is a non-streaming completion result.
type Completion struct {
	Text  string
	Usage Usage
}

// Chunk is one element of a streaming completion. Text fragments arrive
// first; the terminal chunk has Final set and carries cumulative usage when
// the provider reports it. A mid-stream failure is delivered in-band via
// Err, after which the channel is closed.
type Chunk struct {
	Text  string
	Final bool
	Usage *Usage
	Err   error
}

// Provider is the completion capability consumed by the realtime engine.
// Implementations must honor ctx cancellation on both entry points.
type Provider interface {
	Complete(ctx context.Context, model string, messages []Message, opts Options) (*Completion, error)
	Stream(ctx context.Context, model string, messages []Message, opts Options) (<-chan Chunk, error)
}

// ProviderError is returned for any provider-side failure (network, auth,
// rate limit, malformed response). Callers treat it as recoverable and
// substitute deterministic fallback content rather than failing the job.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
