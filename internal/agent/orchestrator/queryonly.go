package orchestrator

import "context"

// QueryOnly wraps an agent that takes no context so it can be dispatched
// like any other specialist. The context text is dropped.
type QueryOnly struct {
	Label string
	Fn    func(ctx context.Context, query string) string
}

func (q QueryOnly) Name() string { return q.Label }

func (q QueryOnly) Run(ctx context.Context, query, _ string) string {
	return q.Fn(ctx, query)
}
