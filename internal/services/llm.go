package services

import "context"

const (
	ChatRoleSystem = "system"
	ChatRoleUser   = "user"
)

// ChatMessage is a single message sent to the generation endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMService defines the interface for the text-generation endpoint.
type LLMService interface {
	// Name identifies the backing service for logs and metrics.
	Name() string

	// Generate returns the raw completion text for the given messages.
	Generate(ctx context.Context, messages []ChatMessage) (string, error)
}
