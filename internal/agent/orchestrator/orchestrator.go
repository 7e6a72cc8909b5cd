package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/agent/specialist"
)

const (
	// GeneralGreeting answers queries classified as General.
	GeneralGreeting = "Hello! I am the Drug Repurposing Orchestrator. Ask me about Anatomy, Clinical Trials, Market Analysis, or Compliance."
	// SystemGreeting answers a bare greeting routed to Anatomy.
	SystemGreeting = "Hello! I am the Drug Repurposing System. Ask me about Anatomy, Trials, Market, or Compliance."

	retrieveLimit = 1
)

var greetings = map[string]bool{"hello": true, "hi": true, "test": true}

// Answer is the routed result for one query.
type Answer struct {
	Category Category `json:"category"`
	Response string   `json:"response"`
}

// Orchestrator classifies queries and dispatches them to specialists.
type Orchestrator struct {
	classifier  Classifier
	specialists map[Category]specialist.Specialist
	retriever   Retriever
	logger      zerolog.Logger
}

type Option func(*Orchestrator)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithRetriever adds retrieved reference text to every dispatch context.
func WithRetriever(r Retriever) Option {
	return func(o *Orchestrator) { o.retriever = r }
}

func New(classifier Classifier, specialists map[Category]specialist.Specialist, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier:  classifier,
		specialists: make(map[Category]specialist.Specialist, len(specialists)),
		logger:      zerolog.Nop(),
	}
	for c, s := range specialists {
		o.specialists[c] = s
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Classify(ctx context.Context, query string) (Category, error) {
	return o.classifier.Classify(ctx, query)
}

// Handle classifies and dispatches query. Failures are reported in the
// response text.
func (o *Orchestrator) Handle(ctx context.Context, session *Session, query string) Answer {
	start := time.Now()
	category, err := o.Classify(ctx, query)
	if err != nil {
		o.logger.Error().Err(err).Msg("classification failed")
		return Answer{Category: General, Response: fmt.Sprintf("System Error: %v", err)}
	}

	response := o.Dispatch(ctx, session, category, query)
	o.logger.Info().
		Str("category", category.String()).
		Int("answer_len", len(response)).
		Dur("latency", time.Since(start)).
		Msg("query handled")
	return Answer{Category: category, Response: response}
}

// Dispatch runs the specialist for category with the session history and
// any retrieved reference text as context. Successful turns are appended to
// session, which may be nil.
func (o *Orchestrator) Dispatch(ctx context.Context, session *Session, category Category, query string) (response string) {
	if category == General {
		return GeneralGreeting
	}

	agent, ok := o.specialists[category]
	if !ok {
		return fmt.Sprintf("Error: The %s Agent is unavailable.", category)
	}

	if category == Anatomy && greetings[strings.ToLower(strings.TrimSpace(query))] {
		return SystemGreeting
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Str("category", category.String()).Msg("specialist panicked")
			response = fmt.Sprintf("System Error: %v", r)
		}
	}()

	contextText := o.assembleContext(ctx, session, query)
	response = agent.Run(ctx, query, contextText)
	if session != nil {
		session.Append(query, response)
	}
	return response
}

// assembleContext renders the session history followed by the first
// passage retrieved for query, if any.
func (o *Orchestrator) assembleContext(ctx context.Context, session *Session, query string) string {
	return "CONVERSATION HISTORY:\n" + formatHistory(session) + "\n" + o.retrieve(ctx, query)
}

// retrieve returns the top passage formatted as reference text. Retriever
// errors are logged and yield no text.
func (o *Orchestrator) retrieve(ctx context.Context, query string) string {
	if o.retriever == nil {
		return ""
	}
	passages, err := o.retriever.Retrieve(ctx, query, retrieveLimit)
	if err != nil {
		o.logger.Warn().Err(err).Msg("retrieval failed, continuing without reference text")
		return ""
	}
	if len(passages) == 0 {
		return ""
	}
	return fmt.Sprintf("\n[RAG Retrieved Info]: %s\n", passages[0].Content)
}

func formatHistory(session *Session) string {
	if session == nil {
		return ""
	}
	turns := session.Turns()
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("User: %s\nAI: %s", t.Query, t.Response))
	}
	return strings.Join(lines, "\n")
}
