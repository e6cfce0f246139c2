package llm

import (
	"context"
	"errors"
)

// Completer sends a single prompt and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// DocumentReader asks a vision-capable model to read a binary document.
type DocumentReader interface {
	ReadDocument(ctx context.Context, data []byte, fileName, prompt string, maxTokens int) (string, error)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

func (PlaceholderClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", ErrNotImplemented
}

func (PlaceholderClient) ReadDocument(ctx context.Context, data []byte, fileName, prompt string, maxTokens int) (string, error) {
	return "", ErrNotImplemented
}

var (
	_ Completer      = PlaceholderClient{}
	_ DocumentReader = PlaceholderClient{}
)
