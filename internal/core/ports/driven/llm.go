// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// ChatModel is a chat-completion language model.
// Every agent call goes through this port.
//
// Implementations include:
//   - OpenAI-compatible APIs (OpenAI, OpenRouter, LM Studio)
//   - Anthropic (Claude)
//   - Ollama (local vision models)
type ChatModel interface {
	// Chat sends the full message log and returns the assistant reply text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string

	// ImageURL is an optional inline image attached to a user turn,
	// normally a data URL ("data:image/png;base64,...").
	ImageURL string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSONMode asks the provider to constrain output to a JSON object
	// where the provider supports it.
	JSONMode bool
}
