package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/medhub/medhub/internal/agent"
)

// Classifier picks the category for a query.
type Classifier interface {
	Classify(ctx context.Context, query string) (Category, error)
}

type keywordSet struct {
	category Category
	terms    []string
}

// Checked in order; the first set with a matching term wins.
var keywordSets = []keywordSet{
	{Compliance, []string{"patient", "id", "hipaa", "confidential", "email", "share", "privacy", "ethics"}},
	{Trials, []string{"phase 1", "phase 2", "phase 3", "recruit", "study", "exclusion", "inclusion", "cohort", "medicine", "drug", "treatment", "therapy", "cure"}},
	{Market, []string{"price", "cost", "revenue", "sales", "competitor", "share", "market", "growth"}},
}

// KeywordClassifier routes by substring match against fixed keyword sets.
// Unmatched queries go to Anatomy. It never returns an error.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, query string) (Category, error) {
	q := strings.ToLower(query)
	for _, set := range keywordSets {
		for _, term := range set.terms {
			if strings.Contains(q, term) {
				return set.category, nil
			}
		}
	}
	return Anatomy, nil
}

const routerPrompt = `Classify the User Query into ONE domain:
- ANATOMY: Biology, physiology, drug mechanisms, body systems.
- TRIALS: Clinical studies, phases, recruitment, patient data.
- MARKET: Commercial potential, competitors, pricing, sales.
- COMPLIANCE: Ethics, privacy, PHI checks, legal regulations.
- GENERAL: Greetings or unclear inputs.

User Query: %s

Return ONLY the category name.`

// RouterPrompt renders the classification prompt for query.
func RouterPrompt(query string) string {
	return fmt.Sprintf(routerPrompt, query)
}

// LLMClassifier asks a chat model for the category name.
type LLMClassifier struct {
	Model agent.ChatModel
}

func NewLLMClassifier(model agent.ChatModel) *LLMClassifier {
	return &LLMClassifier{Model: model}
}

func (c *LLMClassifier) Classify(ctx context.Context, query string) (Category, error) {
	reply, err := c.Model.Complete(ctx, RouterPrompt(query))
	if err != nil {
		return "", fmt.Errorf("classify query: %w", err)
	}
	return MatchCategory(reply), nil
}

// MatchCategory finds the first category name contained in the uppercased
// reply, defaulting to Anatomy.
func MatchCategory(reply string) Category {
	r := strings.ToUpper(strings.TrimSpace(reply))
	for _, c := range Categories {
		if strings.Contains(r, string(c)) {
			return c
		}
	}
	return Anatomy
}
