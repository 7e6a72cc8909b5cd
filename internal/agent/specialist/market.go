package specialist

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/agent"
	"github.com/medhub/medhub/internal/agent/tools"
)

// Market answers commercial questions through an agent loop over forecasting,
// competitor search and sentiment tools.
type Market struct {
	loop   *agent.Loop
	logger zerolog.Logger
}

func NewMarket(model agent.ChatModel, search *tools.WebSearch, opts ...Option) *Market {
	o := buildOptions(opts)
	return &Market{
		loop:   newLoop(model, tools.MarketTools(search), o),
		logger: o.logger,
	}
}

func (m *Market) Name() string { return "MAA" }

func (m *Market) Run(ctx context.Context, query, contextText string) string {
	return traced(m.logger, m.Name(), query, func() string {
		out, err := m.loop.Run(ctx, task(query, contextText))
		if err != nil {
			m.logger.Error().Err(err).Str("agent", m.Name()).Msg("market loop failed")
			return fmt.Sprintf("MAA Error: %v", err)
		}
		return out
	})
}

func newLoop(model agent.ChatModel, ts []agent.Tool, o options) *agent.Loop {
	loopOpts := []agent.Option{agent.WithLogger(o.logger)}
	if o.maxIterations > 0 {
		loopOpts = append(loopOpts, agent.WithMaxIterations(o.maxIterations))
	}
	return agent.NewLoop(model, ts, loopOpts...)
}

// task prefixes the query with the assembled context, when there is any.
func task(query, contextText string) string {
	if contextText == "" {
		return query
	}
	return contextText + "\n\nUser Query: " + query
}
