// Package agents exposes the specialist agent orchestrator over HTTP.
package agents

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/agent/orchestrator"
	"github.com/medhub/medhub/internal/agent/specialist"
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("query is required")

// Answerer classifies and answers a query within a session.
type Answerer interface {
	Handle(ctx context.Context, session *orchestrator.Session, query string) orchestrator.Answer
}

// ComplianceChecker returns a typed compliance decision for a query.
type ComplianceChecker interface {
	Check(ctx context.Context, query, contextText string) (specialist.Decision, error)
}

type Service struct {
	answerer Answerer
	checker  ComplianceChecker
	sessions *orchestrator.SessionStore
	samples  bool
	logger   zerolog.Logger
}

// NewService builds the agents service. With samples set, the suggested
// questions are answered from canned text.
func NewService(answerer Answerer, checker ComplianceChecker, sessions *orchestrator.SessionStore, samples bool, logger zerolog.Logger) *Service {
	return &Service{
		answerer: answerer,
		checker:  checker,
		sessions: sessions,
		samples:  samples,
		logger:   logger,
	}
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// SampleAnswer returns the canned answer for query, if there is one.
func SampleAnswer(query string) (string, bool) {
	resp, ok := sampleResponses[normalize(query)]
	return resp, ok
}

// Query answers query for the session keyed by sessionKey.
func (s *Service) Query(ctx context.Context, sessionKey, query string) (QueryResponse, error) {
	if strings.TrimSpace(query) == "" {
		return QueryResponse{}, ErrEmptyQuery
	}

	if s.samples {
		if resp, ok := SampleAnswer(query); ok {
			s.logger.Debug().Str("session", sessionKey).Msg("sample response served")
			return QueryResponse{Response: resp, Category: orchestrator.General, Sample: true}, nil
		}
	}

	ans := s.answerer.Handle(ctx, s.sessions.Get(sessionKey), query)
	s.logger.Info().
		Str("session", sessionKey).
		Str("category", ans.Category.String()).
		Int("response_len", len(ans.Response)).
		Msg("agent query answered")
	return QueryResponse{Response: ans.Response, Category: ans.Category}, nil
}

// CheckCompliance runs the compliance specialist directly.
func (s *Service) CheckCompliance(ctx context.Context, query string) (specialist.Decision, error) {
	if strings.TrimSpace(query) == "" {
		return specialist.Decision{}, ErrEmptyQuery
	}
	return s.checker.Check(ctx, query, "")
}

func (s *Service) History(sessionKey string) []orchestrator.Turn {
	return s.sessions.Get(sessionKey).Turns()
}

func (s *Service) ResetHistory(sessionKey string) {
	s.sessions.Delete(sessionKey)
}
