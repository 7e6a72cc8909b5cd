// Package knowledge keeps the reference passages the agents retrieve from.
package knowledge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/agent/orchestrator"
)

// TxRunner runs fn inside a transaction carried by ctx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

type Service struct {
	repo   Repository
	inTx   TxRunner
	logger zerolog.Logger
}

func NewService(repo Repository, inTx TxRunner, logger zerolog.Logger) *Service {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{repo: repo, inTx: inTx, logger: logger}
}

func (s *Service) AddPassage(ctx context.Context, p *Passage) error {
	p.Content = strings.TrimSpace(p.Content)
	if p.Content == "" {
		return fmt.Errorf("content is required")
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPassage(ctx context.Context, id uuid.UUID) (*Passage, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeletePassage(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Search returns up to limit passages matching query, best first.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 {
		limit = 5
	}
	return s.repo.Search(ctx, query, limit)
}

// Ingest splits text on blank lines and stores each paragraph as a
// passage, all or nothing.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) ([]*Passage, error) {
	paragraphs := SplitParagraphs(req.Text)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("text contains no passages")
	}

	var stored []*Passage
	err := s.inTx(ctx, func(ctx context.Context) error {
		for _, para := range paragraphs {
			p := &Passage{Source: req.Source, Content: para}
			if err := s.repo.Create(ctx, p); err != nil {
				return fmt.Errorf("store passage: %w", err)
			}
			stored = append(stored, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("source", req.Source).Int("passages", len(stored)).Msg("knowledge ingested")
	return stored, nil
}

// Retrieve lets the store back the agent orchestrator.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]orchestrator.Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	hits, err := s.repo.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]orchestrator.Passage, 0, len(hits))
	for _, h := range hits {
		out = append(out, orchestrator.Passage{
			ID:      h.ID.String(),
			Source:  h.Source,
			Content: h.Content,
			Score:   h.Rank,
		})
	}
	return out, nil
}

// SplitParagraphs breaks text into trimmed paragraphs, folding internal
// line breaks and dropping fragments shorter than a sentence.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range paragraphBreak.Split(text, -1) {
		para := strings.Join(strings.Fields(block), " ")
		if len(para) < minPassageLen {
			continue
		}
		out = append(out, para)
	}
	return out
}
