package agent

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the opening transcript for task with the given tools,
// listed in order.
func BuildPrompt(tools []Tool, task string) string {
	var b strings.Builder
	b.WriteString("Answer the following questions as best you can. You have access to the following tools:\n\n")

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		fmt.Fprintf(&b, "%s: %s\n", t.Name, t.Description)
		names = append(names, t.Name)
	}

	b.WriteString("\nUse the following format:\n\n")
	b.WriteString("Question: the input question you must answer\n")
	b.WriteString("Thought: you should always think about what to do\n")
	fmt.Fprintf(&b, "Action: the action to take, should be one of [%s]\n", strings.Join(names, ", "))
	b.WriteString("Action Input: the input to the action\n")
	b.WriteString("Observation: the result of the action\n")
	b.WriteString("... (this Thought/Action/Action Input/Observation can repeat N times)\n")
	b.WriteString("Thought: I now know the final answer\n")
	b.WriteString("Final Answer: the final answer to the original input question\n\n")
	b.WriteString("Begin!\n\n")
	fmt.Fprintf(&b, "Question: %s\nThought:", task)
	return b.String()
}
