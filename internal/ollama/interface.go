package ollama

import "context"

// ClientInterface defines the chat operation the grader depends on.
type ClientInterface interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
