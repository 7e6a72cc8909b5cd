package specialist

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/agent"
)

const anatomyTemplate = `You are the Human Anatomy Agent (HAP), an expert in biological sciences.

CONTEXT (Patient Data / Research):
%s

INSTRUCTIONS:
Analyze the User Query based on the provided Context (if any).
Use the following format strictly:

### 1. Biological Mechanism
(Explain the pathway or mechanism clearly)

### 2. Anatomical Relevance
(List specific organs, tissues, or receptors involved)

### 3. Physiological Impact
(Describe the expected outcome on the human body)

User Query: %s`

const anatomyError = "HAP Error: Unable to process query."

// Anatomy explains biological mechanisms with a single model call.
type Anatomy struct {
	model  agent.ChatModel
	logger zerolog.Logger
}

func NewAnatomy(model agent.ChatModel, opts ...Option) *Anatomy {
	o := buildOptions(opts)
	return &Anatomy{model: model, logger: o.logger}
}

func (a *Anatomy) Name() string { return "HAP" }

func (a *Anatomy) Run(ctx context.Context, query, contextText string) string {
	return traced(a.logger, a.Name(), query, func() string {
		out, err := a.model.Complete(ctx, fmt.Sprintf(anatomyTemplate, contextText, query))
		if err != nil {
			a.logger.Error().Err(err).Str("agent", a.Name()).Msg("anatomy completion failed")
			return anatomyError
		}
		return strings.TrimSpace(out)
	})
}
