package orchestrator

import "context"

// Passage is one retrieved reference text.
type Passage struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Retriever returns up to k passages relevant to query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, query string, k int) ([]Passage, error)

func (f RetrieverFunc) Retrieve(ctx context.Context, query string, k int) ([]Passage, error) {
	return f(ctx, query, k)
}
