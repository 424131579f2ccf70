// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides chat completions for planning and answer synthesis.
// Non-2xx responses surface as errors wrapping domain.ErrUpstream and
// carrying the status code and response body.
type LLMService interface {
	// Complete sends a single system + user exchange and returns the reply text.
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
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
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero leaves it to the provider.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// KeyProvider resolves an API key at call time.
type KeyProvider interface {
	// APIKey returns the key, or an error wrapping domain.ErrMissingCredential.
	APIKey(ctx context.Context) (string, error)
}

// StaticKey is a KeyProvider that always returns the same key.
type StaticKey string

// APIKey returns the key itself.
func (k StaticKey) APIKey(_ context.Context) (string, error) {
	return string(k), nil
}
