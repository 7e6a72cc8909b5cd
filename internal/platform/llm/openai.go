package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAI talks to the OpenAI chat completions API or any server that speaks
// it, including Ollama's /v1 endpoint.
type OpenAI struct {
	client openai.Client
	opts   Options
}

// NewOpenAI creates a model against api.openai.com, or baseURL when set.
func NewOpenAI(apiKey, baseURL string, opts Options) *OpenAI {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	return &OpenAI{client: openai.NewClient(reqOpts...), opts: opts}
}

// NewOllama creates a model served by a local Ollama daemon at ollamaURL
// (for example http://localhost:11434).
func NewOllama(ollamaURL string, opts Options) *OpenAI {
	return NewOpenAI("ollama", OllamaBaseURL(ollamaURL), opts)
}

// OllamaBaseURL returns the OpenAI-compatible base URL of an Ollama daemon.
func OllamaBaseURL(ollamaURL string) string {
	return strings.TrimRight(ollamaURL, "/") + "/v1/"
}

func (m *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(m.opts.Temperature),
	}
	if m.opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(m.opts.MaxTokens)
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion (%s): %w", m.opts.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
