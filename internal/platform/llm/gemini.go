package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini calls the Gemini API generateContent endpoint.
type Gemini struct {
	client *genai.Client
	opts   Options
}

func NewGemini(ctx context.Context, apiKey string, opts Options) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, opts: opts}, nil
}

func (m *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(m.opts.Temperature)),
	}
	if m.opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(m.opts.MaxTokens)
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", m.opts.Model, err)
	}
	return resp.Text(), nil
}
