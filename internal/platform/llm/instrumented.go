package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Instrumented logs every completion's size, latency and outcome.
type Instrumented struct {
	Inner  Model
	Name   string
	Logger zerolog.Logger
}

func NewInstrumented(inner Model, name string, logger zerolog.Logger) *Instrumented {
	return &Instrumented{Inner: inner, Name: name, Logger: logger}
}

func (m *Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := m.Inner.Complete(ctx, prompt)

	evt := m.Logger.Debug()
	if err != nil {
		evt = m.Logger.Warn().Err(err)
	}
	evt.
		Str("model", m.Name).
		Int("prompt_chars", len(prompt)).
		Int("response_chars", len(out)).
		Dur("latency", time.Since(start)).
		Msg("llm completion")

	return out, err
}
