// Package specialist implements the four domain agents the orchestrator
// dispatches to: anatomy (HAP), compliance (HAA), market analysis (MAA) and
// clinical trials (CTA).
package specialist

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Specialist answers a query, optionally grounded in context. Run never
// fails: errors come back as a prefixed answer string.
type Specialist interface {
	Name() string
	Run(ctx context.Context, query, contextText string) string
}

// Default model names and temperatures per specialist.
const (
	DefaultAnatomyModel    = "llama3"
	DefaultComplianceModel = "llama3"
	DefaultMarketModel     = "qwen2:0.5b"
	DefaultTrialsModel     = "mistral-small"

	AnatomyTemperature    = 0.2
	ComplianceTemperature = 0
	MarketTemperature     = 0
	TrialsTemperature     = 0
)

type options struct {
	logger        zerolog.Logger
	maxIterations int
}

type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxIterations bounds the agent loop of the tool-using specialists.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// traced logs entry and exit around one Run.
func traced(logger zerolog.Logger, name, query string, run func() string) string {
	start := time.Now()
	logger.Info().Str("agent", name).Int("query_len", len(query)).Msg("specialist start")

	out := run()

	logger.Info().
		Str("agent", name).
		Int("query_len", len(query)).
		Int("answer_len", len(out)).
		Dur("latency", time.Since(start)).
		Msg("specialist done")
	return out
}
