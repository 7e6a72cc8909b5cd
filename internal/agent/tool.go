// Package agent runs a bounded Thought/Action/Observation loop against a chat
// model and a fixed set of string-in, string-out tools.
package agent

import (
	"context"
	"strings"
)

// ChatModel completes a prompt. It is satisfied by every llm provider.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatModelFunc adapts a function to ChatModel.
type ChatModelFunc func(ctx context.Context, prompt string) (string, error)

func (f ChatModelFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Tool is a named capability the model may invoke by writing
// "Action: <Name>\nAction Input: <input>".
type Tool struct {
	Name        string
	Description string
	Func        func(ctx context.Context, input string) (string, error)
}

func (t Tool) key() string {
	return strings.ToLower(strings.TrimSpace(t.Name))
}
