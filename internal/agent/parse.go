package agent

import (
	"regexp"
	"strings"
)

// StepKind classifies one model output.
type StepKind int

const (
	// StepNone means the output has neither a final answer nor an action.
	StepNone StepKind = iota
	// StepFinal carries the text after the last "Final Answer:".
	StepFinal
	// StepAction names a tool and its input.
	StepAction
	// StepMalformedAction has an "Action:" marker but no usable tool/input pair.
	StepMalformedAction
)

func (k StepKind) String() string {
	switch k {
	case StepFinal:
		return "final"
	case StepAction:
		return "action"
	case StepMalformedAction:
		return "malformed_action"
	default:
		return "none"
	}
}

// Step is the parsed form of a model output.
type Step struct {
	Kind   StepKind
	Answer string
	Tool   string
	Input  string
}

const (
	finalMarker  = "Final Answer:"
	actionMarker = "Action:"
)

var actionPattern = regexp.MustCompile(`(?s)Action:\s*(.+?)\nAction Input:\s*(.+)`)

// ParseStep classifies a model output. A final answer wins over an action
// when both are present.
func ParseStep(output string) Step {
	if i := strings.LastIndex(output, finalMarker); i >= 0 {
		return Step{
			Kind:   StepFinal,
			Answer: strings.TrimSpace(output[i+len(finalMarker):]),
		}
	}

	if m := actionPattern.FindStringSubmatch(output); m != nil {
		name := strings.ToLower(strings.TrimSpace(m[1]))
		if name != "" {
			return Step{
				Kind:  StepAction,
				Tool:  name,
				Input: strings.TrimSpace(m[2]),
			}
		}
		return Step{Kind: StepMalformedAction}
	}

	if strings.Contains(output, actionMarker) {
		return Step{Kind: StepMalformedAction}
	}
	return Step{Kind: StepNone}
}
