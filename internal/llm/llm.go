package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for text generation.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// GenerateText returns ErrNotImplemented.
func (PlaceholderClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotImplemented
}
