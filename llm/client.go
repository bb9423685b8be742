package llm

import (
	"context"
)

// Client defines the interface for LLM providers
type Client interface {
	// Chat sends a single chat request and returns the response.
	// Implementations must not retry.
	Chat(ctx context.Context, request *ChatRequest) (*ChatResponse, error)

	// Close cleans up any resources
	Close() error
}

// Named is implemented by clients that can report which provider backs them
type Named interface {
	Provider() string
}

// ProviderName returns the provider behind c, or "unknown"
func ProviderName(c Client) string {
	if n, ok := c.(Named); ok {
		return n.Provider()
	}
	return "unknown"
}
