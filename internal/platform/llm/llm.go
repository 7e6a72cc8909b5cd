// Package llm adapts hosted and local chat-completion APIs to a single
// prompt-in, text-out interface used by the agents.
package llm

import (
	"context"
	"errors"
	"net/http"
)

// Model completes a single-turn prompt.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when a provider answers without any choice.
// Blank text is a valid reply and is returned unchanged.
var ErrEmptyResponse = errors.New("llm: empty response")

// Options selects a provider model and its sampling settings.
type Options struct {
	Model       string
	Temperature float64
	// MaxTokens caps the completion. Zero uses DefaultMaxTokens where the
	// provider requires a value.
	MaxTokens int64
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

const DefaultMaxTokens = 1024

func (o Options) maxTokens() int64 {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return DefaultMaxTokens
}
