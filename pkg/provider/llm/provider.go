// Package llm defines the Provider interface for the language-model
// backends that power the grammar, vocabulary, and verification
// analyses.
//
// An LLM provider wraps a remote or local model API and exposes a
// uniform completion call so the assessment orchestrator never couples
// to a specific SDK. Responses are free text; the caller runs them
// through the JSON recovery layer rather than trusting the model to
// emit valid JSON.
//
// Implementors must be safe for concurrent use and must propagate
// context cancellation promptly.
package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single message in a model conversation.
type Message struct {
	// Role is one of [RoleSystem], [RoleUser], or [RoleAssistant].
	Role string

	// Content is the text content of the message.
	Content string
}

// Usage holds token accounting returned by the backend. Counts are in
// the model's native token unit and may differ between providers for
// the same text.
type Usage struct {
	PromptTokens     int
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens; some providers
	// return it directly rather than computing it from the parts.
	TotalTokens int
}

// CompletionRequest carries everything the model needs to produce a
// response. A zero-value request is invalid; Messages must be
// non-empty.
type CompletionRequest struct {
	// SystemPrompt is an optional high-priority instruction injected
	// before the conversation. Providers without a dedicated system
	// field prepend it as a system-role message.
	SystemPrompt string

	// Messages is the ordered conversation. For assessment calls this
	// is usually a single user message holding the analysis prompt.
	Messages []Message

	// Temperature controls output randomness in [0.0, 2.0]. Assessment
	// prompts run low temperatures for reproducibility.
	Temperature float64

	// MaxTokens caps completion length. Zero means provider default.
	MaxTokens int
}

// CompletionResponse is the full, non-streaming model reply.
type CompletionResponse struct {
	// Content is the text of the reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// Returns an error if the request fails or ctx is cancelled before
	// the completion arrives.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
