package specialist

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medhub/medhub/internal/agent"
)

const complianceTemplate = `You are the Human Autonomy Agent (HAA), the designated Compliance and Ethics Officer.

CONTEXT (Patient Data / Company Policies):
%s

INSTRUCTIONS:
Strictly evaluate the User Query against HIPAA/GDPR data privacy laws and ethical guidelines.

Evaluation Criteria:
1. **PHI (Protected Health Information)**: Reject requests containing un-anonymized names, IDs, phones, or emails.
2. **Ethics**: Reject harmful, unsafe, or illegal requests.
3. **Safety**: Ensure medical advice includes a disclaimer.

Format your decision EXACTLY as follows:

DECISION: [PASS / FAIL]
REASON: [Brief explanation of the violation or approval]

User Query: %s`

const complianceError = "HAA Error: Unable to process compliance check."

// Verdict is the outcome of a compliance check.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictFail    Verdict = "FAIL"
	VerdictUnknown Verdict = "UNKNOWN"
)

// Decision is a parsed compliance answer. Raw keeps the model's full text.
type Decision struct {
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason"`
	Raw     string  `json:"raw"`
}

// Passed reports whether the query cleared the check.
func (d Decision) Passed() bool { return d.Verdict == VerdictPass }

var (
	decisionPattern = regexp.MustCompile(`(?i)DECISION\**\s*:\**\s*\[?\s*(PASS|FAIL)`)
	reasonPattern   = regexp.MustCompile(`(?is)REASON\**\s*:\**\s*(.+)`)
)

// ParseDecision extracts the verdict and reason from a model answer. An
// answer without a recognisable DECISION line is VerdictUnknown.
func ParseDecision(raw string) Decision {
	d := Decision{Verdict: VerdictUnknown, Raw: raw}
	if m := decisionPattern.FindStringSubmatch(raw); m != nil {
		d.Verdict = Verdict(strings.ToUpper(m[1]))
	}
	if m := reasonPattern.FindStringSubmatch(raw); m != nil {
		d.Reason = strings.Trim(strings.TrimSpace(m[1]), "[]")
	}
	return d
}

// Compliance screens queries for PHI, ethics and safety problems.
type Compliance struct {
	model  agent.ChatModel
	logger zerolog.Logger
}

func NewCompliance(model agent.ChatModel, opts ...Option) *Compliance {
	o := buildOptions(opts)
	return &Compliance{model: model, logger: o.logger}
}

func (c *Compliance) Name() string { return "HAA" }

// Check runs the compliance prompt and returns the parsed decision.
func (c *Compliance) Check(ctx context.Context, query, contextText string) (Decision, error) {
	out, err := c.model.Complete(ctx, fmt.Sprintf(complianceTemplate, contextText, query))
	if err != nil {
		return Decision{}, fmt.Errorf("compliance check: %w", err)
	}
	d := ParseDecision(strings.TrimSpace(out))
	c.logger.Info().Str("agent", c.Name()).Str("verdict", string(d.Verdict)).Msg("compliance decision")
	return d, nil
}

// Run returns the raw decision text.
func (c *Compliance) Run(ctx context.Context, query, contextText string) string {
	return traced(c.logger, c.Name(), query, func() string {
		d, err := c.Check(ctx, query, contextText)
		if err != nil {
			c.logger.Error().Err(err).Str("agent", c.Name()).Msg("compliance completion failed")
			return complianceError
		}
		return d.Raw
	})
}
