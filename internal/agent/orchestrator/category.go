// Package orchestrator routes a user query to one specialist agent and
// keeps a short per-user conversation history.
package orchestrator

// Category names the specialist a query is routed to.
type Category string

const (
	Anatomy    Category = "ANATOMY"
	Trials     Category = "TRIALS"
	Market     Category = "MARKET"
	Compliance Category = "COMPLIANCE"
	General    Category = "GENERAL"
)

// Categories lists every category in LLM match order.
var Categories = []Category{Anatomy, Trials, Market, Compliance, General}

func (c Category) String() string { return string(c) }
