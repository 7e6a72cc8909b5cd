package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/config"
)

// Factory builds models for the configured provider.
type Factory struct {
	cfg        *config.Config
	logger     zerolog.Logger
	httpClient *http.Client
}

func NewFactory(cfg *config.Config, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// WithHTTPClient routes every provider through hc.
func (f *Factory) WithHTTPClient(hc *http.Client) *Factory {
	f.httpClient = hc
	return f
}

// Chat returns a model named model at temperature on LLM_PROVIDER. An empty
// model name leaves the provider default in place.
func (f *Factory) Chat(model string, temperature float64) (Model, error) {
	opts := Options{Model: model, Temperature: temperature, HTTPClient: f.httpClient}

	var m Model
	switch f.cfg.LLMProvider {
	case "ollama":
		m = NewOllama(f.cfg.OllamaURL, opts)
	case "openai":
		m = NewOpenAI(f.cfg.OpenAIAPIKey, f.cfg.OpenAIBaseURL, opts)
	case "anthropic":
		m = NewAnthropic(f.cfg.AnthropicAPIKey, opts)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", f.cfg.LLMProvider)
	}
	return NewInstrumented(m, f.cfg.LLMProvider+"/"+model, f.logger), nil
}

// Router returns the Gemini model used for LLM query classification.
func (f *Factory) Router(ctx context.Context) (Model, error) {
	if f.cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the LLM router")
	}
	m, err := NewGemini(ctx, f.cfg.GeminiAPIKey, Options{
		Model:      f.cfg.RouterModel,
		HTTPClient: f.httpClient,
	})
	if err != nil {
		return nil, err
	}
	return NewInstrumented(m, "gemini/"+f.cfg.RouterModel, f.logger), nil
}
