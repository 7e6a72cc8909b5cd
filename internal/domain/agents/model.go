package agents

import (
	"github.com/medhub/medhub/internal/agent/orchestrator"
)

// QueryRequest is the body of POST /agents/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse carries the answer and the category that produced it.
// Sample is set for canned answers that skipped the agents.
type QueryResponse struct {
	Response string                `json:"response"`
	Category orchestrator.Category `json:"category"`
	Sample   bool                  `json:"sample,omitempty"`
}

// HistoryResponse lists the turns remembered for the caller.
type HistoryResponse struct {
	Turns []orchestrator.Turn `json:"turns"`
}
