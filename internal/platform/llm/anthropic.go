package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

// Anthropic calls the Messages API with a single user turn.
type Anthropic struct {
	client anthropic.Client
	opts   Options
}

func NewAnthropic(apiKey string, opts Options) *Anthropic {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if opts.Model == "" {
		opts.Model = string(DefaultAnthropicModel)
	}
	return &Anthropic{client: anthropic.NewClient(reqOpts...), opts: opts}
}

func (m *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(m.opts.Model),
		MaxTokens:   m.opts.maxTokens(),
		Temperature: anthropic.Float(m.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message (%s): %w", m.opts.Model, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}
