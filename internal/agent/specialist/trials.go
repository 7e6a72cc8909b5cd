package specialist

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/agent"
	"github.com/medhub/medhub/internal/agent/tools"
)

// Trials researches drug safety and trial status through an agent loop over
// QSAR, registry search and literature tools.
type Trials struct {
	loop   *agent.Loop
	logger zerolog.Logger
}

func NewTrials(model agent.ChatModel, registry *tools.ClinicalTrials, opts ...Option) *Trials {
	o := buildOptions(opts)
	return &Trials{
		loop:   newLoop(model, tools.TrialsTools(registry), o),
		logger: o.logger,
	}
}

func (t *Trials) Name() string { return "CTA" }

func (t *Trials) Run(ctx context.Context, query, contextText string) string {
	return traced(t.logger, t.Name(), query, func() string {
		out, err := t.loop.Run(ctx, task(query, contextText))
		if err != nil {
			t.logger.Error().Err(err).Str("agent", t.Name()).Msg("trials loop failed")
			return fmt.Sprintf("CTA Error: %v", err)
		}
		return out
	})
}
