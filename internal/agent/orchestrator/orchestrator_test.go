package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhub/medhub/internal/agent/specialist"
)

// recorder answers with a fixed reply and captures what it was given.
type recorder struct {
	name     string
	reply    string
	queries  []string
	contexts []string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Run(_ context.Context, query, contextText string) string {
	r.queries = append(r.queries, query)
	r.contexts = append(r.contexts, contextText)
	return r.reply
}

type panicker struct{}

func (panicker) Name() string { return "boom" }

func (panicker) Run(context.Context, string, string) string { panic("tool table corrupted") }

type fixedClassifier struct {
	category Category
	err      error
}

func (f fixedClassifier) Classify(context.Context, string) (Category, error) {
	return f.category, f.err
}

func allSpecialists() (map[Category]specialist.Specialist, map[Category]*recorder) {
	recs := map[Category]*recorder{
		Anatomy:    {name: "HAP", reply: "anatomy answer"},
		Trials:     {name: "CTA", reply: "trials answer"},
		Market:     {name: "MAA", reply: "market answer"},
		Compliance: {name: "HAA", reply: "DECISION: FAIL\nREASON: PHI"},
	}
	m := make(map[Category]specialist.Specialist, len(recs))
	for c, r := range recs {
		m[c] = r
	}
	return m, recs
}

func TestHandle_RoutesByKeyword(t *testing.T) {
	specs, recs := allSpecialists()
	o := New(KeywordClassifier{}, specs)
	ctx := context.Background()

	ans := o.Handle(ctx, NewSession(), "Please email the diagnosis for Patient ID 999 to marketing.")
	assert.Equal(t, Compliance, ans.Category)
	assert.Equal(t, "DECISION: FAIL\nREASON: PHI", ans.Response)

	ans = o.Handle(ctx, NewSession(), "What is the 5-year growth forecast for the Alzheimer's market?")
	assert.Equal(t, Market, ans.Category)
	assert.Equal(t, "market answer", ans.Response)

	assert.Len(t, recs[Compliance].queries, 1)
	assert.Len(t, recs[Market].queries, 1)
	assert.Empty(t, recs[Anatomy].queries)
}

func TestHandle_ClassificationError(t *testing.T) {
	specs, _ := allSpecialists()
	o := New(fixedClassifier{err: errors.New("router offline")}, specs)

	ans := o.Handle(context.Background(), NewSession(), "anything")
	assert.Equal(t, "System Error: router offline", ans.Response)
}

func TestDispatch_ContextIncludesHistory(t *testing.T) {
	specs, recs := allSpecialists()
	o := New(KeywordClassifier{}, specs)
	sess := NewSession()
	ctx := context.Background()

	o.Dispatch(ctx, sess, Anatomy, "What is the liver?")
	require.Equal(t, []string{"CONVERSATION HISTORY:\n\n"}, recs[Anatomy].contexts)

	o.Dispatch(ctx, sess, Anatomy, "And the kidney?")
	assert.Equal(t,
		"CONVERSATION HISTORY:\nUser: What is the liver?\nAI: anatomy answer\n",
		recs[Anatomy].contexts[1])
}

func TestDispatch_HistoryBoundedToThreeTurns(t *testing.T) {
	specs, recs := allSpecialists()
	o := New(KeywordClassifier{}, specs)
	sess := NewSession()
	ctx := context.Background()

	for _, q := range []string{"one", "two", "three", "four", "five"} {
		o.Dispatch(ctx, sess, Anatomy, q)
	}

	last := recs[Anatomy].contexts[4]
	assert.NotContains(t, last, "User: one")
	assert.Contains(t, last, "User: two")
	assert.Contains(t, last, "User: four")
	assert.Less(t, strings.Index(last, "User: two"), strings.Index(last, "User: four"))
	assert.Len(t, sess.Turns(), HistorySize)
}

func TestDispatch_RetrievedPassage(t *testing.T) {
	specs, recs := allSpecialists()
	retriever := RetrieverFunc(func(_ context.Context, query string, k int) ([]Passage, error) {
		assert.Equal(t, 1, k)
		return []Passage{{Content: "The liver filters blood."}, {Content: "ignored"}}, nil
	})
	o := New(KeywordClassifier{}, specs, WithRetriever(retriever))

	o.Dispatch(context.Background(), nil, Anatomy, "What is the liver?")
	assert.Equal(t,
		"CONVERSATION HISTORY:\n\n\n[RAG Retrieved Info]: The liver filters blood.\n",
		recs[Anatomy].contexts[0])
}

func TestDispatch_RetrieverErrorIgnored(t *testing.T) {
	specs, recs := allSpecialists()
	retriever := RetrieverFunc(func(context.Context, string, int) ([]Passage, error) {
		return nil, errors.New("index unavailable")
	})
	o := New(KeywordClassifier{}, specs, WithRetriever(retriever), WithLogger(zerolog.Nop()))

	got := o.Dispatch(context.Background(), nil, Anatomy, "What is the liver?")
	assert.Equal(t, "anatomy answer", got)
	assert.Equal(t, "CONVERSATION HISTORY:\n\n", recs[Anatomy].contexts[0])
}

func TestDispatch_MissingSpecialist(t *testing.T) {
	o := New(KeywordClassifier{}, nil)
	sess := NewSession()

	got := o.Dispatch(context.Background(), sess, Trials, "phase 3 aspirin")
	assert.Equal(t, "Error: The TRIALS Agent is unavailable.", got)
	assert.Empty(t, sess.Turns())
}

func TestDispatch_Greetings(t *testing.T) {
	specs, recs := allSpecialists()
	o := New(KeywordClassifier{}, specs)
	ctx := context.Background()
	sess := NewSession()

	assert.Equal(t, SystemGreeting, o.Dispatch(ctx, sess, Anatomy, "Hello"))
	assert.Equal(t, SystemGreeting, o.Dispatch(ctx, sess, Anatomy, "test"))
	assert.Equal(t, GeneralGreeting, o.Dispatch(ctx, sess, General, "good morning"))
	assert.Empty(t, recs[Anatomy].queries)
	assert.Empty(t, sess.Turns())

	// Greeting words inside a longer query are a normal question.
	assert.Equal(t, "anatomy answer", o.Dispatch(ctx, sess, Anatomy, "hi, how do lungs work?"))
}

func TestDispatch_PanicBecomesSystemError(t *testing.T) {
	o := New(KeywordClassifier{}, map[Category]specialist.Specialist{Market: panicker{}})
	sess := NewSession()

	got := o.Dispatch(context.Background(), sess, Market, "market size")
	assert.Equal(t, "System Error: tool table corrupted", got)
	assert.Empty(t, sess.Turns())
}

func TestDispatch_QueryOnlyAdapter(t *testing.T) {
	var seen string
	legacy := QueryOnly{Label: "legacy-trials", Fn: func(_ context.Context, query string) string {
		seen = query
		return "legacy answer for " + query
	}}
	o := New(KeywordClassifier{}, map[Category]specialist.Specialist{Trials: legacy})

	got := o.Dispatch(context.Background(), NewSession(), Trials, "recruit cohort")
	assert.Equal(t, "legacy answer for recruit cohort", got)
	assert.Equal(t, "recruit cohort", seen)
	assert.Equal(t, "legacy-trials", legacy.Name())
}

func TestNew_CopiesSpecialistMap(t *testing.T) {
	specs, _ := allSpecialists()
	o := New(KeywordClassifier{}, specs)
	delete(specs, Anatomy)

	assert.Equal(t, "anatomy answer", o.Dispatch(context.Background(), nil, Anatomy, "What is bone?"))
}
