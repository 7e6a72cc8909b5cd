package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultMaxIterations bounds model invocations per Run.
const DefaultMaxIterations = 5

// TimeoutAnswer is returned when no final answer appears within the
// iteration budget.
const TimeoutAnswer = "Agent timed out or failed to find final answer."

// Loop drives a model through Thought/Action/Observation steps.
type Loop struct {
	model         ChatModel
	tools         []Tool
	byKey         map[string]Tool
	maxIterations int
	logger        zerolog.Logger
}

type Option func(*Loop)

// WithMaxIterations overrides DefaultMaxIterations. Values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

func NewLoop(model ChatModel, tools []Tool, opts ...Option) *Loop {
	l := &Loop{
		model:         model,
		tools:         append([]Tool(nil), tools...),
		byKey:         make(map[string]Tool, len(tools)),
		maxIterations: DefaultMaxIterations,
		logger:        zerolog.Nop(),
	}
	for _, t := range l.tools {
		l.byKey[t.key()] = t
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tools returns the tool names in registration order.
func (l *Loop) Tools() []string {
	names := make([]string, len(l.tools))
	for i, t := range l.tools {
		names[i] = t.Name
	}
	return names
}

// Run works task until the model gives a final answer or the iteration
// budget runs out, in which case it returns TimeoutAnswer and a nil error.
// Only model failures and context cancellation are returned as errors.
func (l *Loop) Run(ctx context.Context, task string) (string, error) {
	var transcript strings.Builder
	transcript.WriteString(BuildPrompt(l.tools, task))

	for i := 1; i <= l.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("agent step %d: %w", i, err)
		}

		output, err := l.model.Complete(ctx, transcript.String())
		if err != nil {
			return "", fmt.Errorf("agent step %d: %w", i, err)
		}
		transcript.WriteString(output)

		step := ParseStep(output)
		l.logger.Debug().
			Int("step", i).
			Str("kind", step.Kind.String()).
			Str("tool", step.Tool).
			Msg("agent step")

		switch step.Kind {
		case StepFinal:
			return step.Answer, nil
		case StepAction:
			transcript.WriteString("\nObservation: ")
			transcript.WriteString(l.observe(ctx, step))
			transcript.WriteString("\nThought:")
		case StepMalformedAction:
			// Re-prompt with the transcript as is.
		case StepNone:
			transcript.WriteString("\nThought:")
		}
	}

	l.logger.Debug().Int("max_iterations", l.maxIterations).Msg("agent gave up without final answer")
	return TimeoutAnswer, nil
}

// observe runs the requested tool. Tool errors and panics both become
// "Error: ..." observations.
func (l *Loop) observe(ctx context.Context, step Step) (observation string) {
	tool, ok := l.byKey[step.Tool]
	if !ok {
		keys := make([]string, len(l.tools))
		for i, t := range l.tools {
			keys[i] = t.key()
		}
		return fmt.Sprintf("Error: Tool '%s' not found. Available tools: [%s]",
			step.Tool, strings.Join(keys, ", "))
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Str("tool", step.Tool).Msg("tool panicked")
			observation = fmt.Sprintf("Error: %v", r)
		}
	}()

	result, err := tool.Func(ctx, step.Input)
	if err != nil {
		return "Error: " + err.Error()
	}
	return result
}
