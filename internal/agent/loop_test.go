package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel replays outputs in order and records every prompt it sees.
type scriptedModel struct {
	outputs []string
	prompts []string
	err     error
}

func (m *scriptedModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	i := len(m.prompts) - 1
	if i >= len(m.outputs) {
		return m.outputs[len(m.outputs)-1], nil
	}
	return m.outputs[i], nil
}

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echoes its input",
		Func: func(ctx context.Context, input string) (string, error) {
			return name + " saw " + input, nil
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt([]Tool{echoTool("Alpha"), echoTool("Beta")}, "what now?")

	assert.True(t, strings.HasPrefix(p, "Answer the following questions as best you can. You have access to the following tools:\n\nAlpha: echoes its input\nBeta: echoes its input\n"))
	assert.Contains(t, p, "Action: the action to take, should be one of [Alpha, Beta]\n")
	assert.True(t, strings.HasSuffix(p, "Begin!\n\nQuestion: what now?\nThought:"))
}

func TestLoop_FinalAnswerFirstStep(t *testing.T) {
	m := &scriptedModel{outputs: []string{" easy.\nFinal Answer:  done  "}}
	out, err := NewLoop(m, nil).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Len(t, m.prompts, 1)
}

func TestLoop_TimesOutAfterFiveCalls(t *testing.T) {
	m := &scriptedModel{outputs: []string{" still thinking"}}
	out, err := NewLoop(m, []Tool{echoTool("Alpha")}).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, TimeoutAnswer, out)
	assert.Len(t, m.prompts, DefaultMaxIterations)

	// StepNone re-prompts with a fresh Thought: marker each time.
	assert.True(t, strings.HasSuffix(m.prompts[1], " still thinking\nThought:"))
}

func TestLoop_MaxIterationsOption(t *testing.T) {
	m := &scriptedModel{outputs: []string{"hmm"}}
	out, err := NewLoop(m, nil, WithMaxIterations(2)).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, TimeoutAnswer, out)
	assert.Len(t, m.prompts, 2)

	m = &scriptedModel{outputs: []string{"hmm"}}
	NewLoop(m, nil, WithMaxIterations(0)).Run(context.Background(), "task")
	assert.Len(t, m.prompts, DefaultMaxIterations)
}

func TestLoop_ToolObservation(t *testing.T) {
	m := &scriptedModel{outputs: []string{
		" look it up\nAction: ALPHA\nAction Input: aspirin",
		" got it\nFinal Answer: aspirin is fine",
	}}
	out, err := NewLoop(m, []Tool{echoTool("Alpha")}).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "aspirin is fine", out)
	require.Len(t, m.prompts, 2)
	assert.True(t, strings.HasSuffix(m.prompts[1], "Action Input: aspirin\nObservation: Alpha saw aspirin\nThought:"))
}

func TestLoop_ToolErrorBecomesObservation(t *testing.T) {
	failing := Tool{
		Name:        "Broken",
		Description: "always fails",
		Func: func(ctx context.Context, input string) (string, error) {
			return "", errors.New("registry offline")
		},
	}
	m := &scriptedModel{outputs: []string{
		"Action: Broken\nAction Input: x",
		"Final Answer: recovered",
	}}

	out, err := NewLoop(m, []Tool{failing}).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Contains(t, m.prompts[1], "\nObservation: Error: registry offline\nThought:")
}

func TestLoop_ToolPanicBecomesObservation(t *testing.T) {
	panicky := Tool{
		Name:        "Fragile",
		Description: "writes to a nil map",
		Func: func(ctx context.Context, input string) (string, error) {
			var cache map[string]string
			cache[input] = "x"
			return "unreachable", nil
		},
	}
	m := &scriptedModel{outputs: []string{
		"Action: Fragile\nAction Input: x",
		"Final Answer: recovered",
	}}

	var out string
	var err error
	require.NotPanics(t, func() {
		out, err = NewLoop(m, []Tool{panicky}).Run(context.Background(), "task")
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Contains(t, m.prompts[1], "\nObservation: Error: assignment to entry in nil map\nThought:")
}

func TestLoop_EmptyReplyKeepsGoing(t *testing.T) {
	m := &scriptedModel{outputs: []string{"", "Final Answer: ok"}}

	out, err := NewLoop(m, nil).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	require.Len(t, m.prompts, 2)
	assert.True(t, strings.HasSuffix(m.prompts[1], "Question: task\nThought:\nThought:"))
}

func TestLoop_UnknownTool(t *testing.T) {
	m := &scriptedModel{outputs: []string{
		"Action: Telepathy\nAction Input: x",
		"Final Answer: ok",
	}}

	_, err := NewLoop(m, []Tool{echoTool("Alpha"), echoTool("Beta Gamma")}).Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Contains(t, m.prompts[1],
		"\nObservation: Error: Tool 'telepathy' not found. Available tools: [alpha, beta gamma]\nThought:")
}

func TestLoop_MalformedActionAppendsNothing(t *testing.T) {
	m := &scriptedModel{outputs: []string{
		"Action: Alpha",
		"Final Answer: ok",
	}}

	_, err := NewLoop(m, []Tool{echoTool("Alpha")}).Run(context.Background(), "task")
	require.NoError(t, err)
	require.Len(t, m.prompts, 2)
	assert.True(t, strings.HasSuffix(m.prompts[1], "Thought:Action: Alpha"))
}

func TestLoop_ModelErrorWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	m := &scriptedModel{err: boom}

	_, err := NewLoop(m, nil).Run(context.Background(), "task")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "agent step 1")
}

func TestLoop_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &scriptedModel{outputs: []string{"Final Answer: never"}}
	_, err := NewLoop(m, nil).Run(ctx, "task")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.prompts)
}

func TestLoop_ToolsInOrder(t *testing.T) {
	l := NewLoop(&scriptedModel{}, []Tool{echoTool("B"), echoTool("A")})
	assert.Equal(t, []string{"B", "A"}, l.Tools())
}

func TestChatModelFunc(t *testing.T) {
	var m ChatModel = ChatModelFunc(func(ctx context.Context, prompt string) (string, error) {
		if !strings.HasSuffix(prompt, "Question: ping\nThought:") {
			return "no idea", nil
		}
		return " trivial\nFinal Answer: pong", nil
	})
	out, err := NewLoop(m, nil).Run(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}
