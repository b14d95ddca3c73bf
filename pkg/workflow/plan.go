package workflow

import "strings"

// maxPlannedTasks caps how many subtasks a plan may contain.
const maxPlannedTasks = 4

// Task is one planned subtask, executed by a named agent.
type Task struct {
	Agent       string
	Description string

	// result holds the produced text after execution (realtime mode).
	result string
}

// simulatedPlans maps workflow types to their fixed simulated task lists.
var simulatedPlans = map[WorkflowType][]string{
	TypeSummarization:  {"research", "extract", "summarize"},
	TypeExplanation:    {"research", "analyze", "explain"},
	TypeCodeGeneration: {"plan", "generate", "validate"},
	TypeResearch:       {"search", "filter", "synthesize"},
	TypeGeneralQuery:   {"analyze", "process", "respond"},
}

// planFallback is used when a planner reply parses to zero tasks.
var planFallback = []Task{
	{Agent: "Research Agent", Description: "Gather relevant information"},
	{Agent: "Analysis Agent", Description: "Process and analyze data"},
	{Agent: "Synthesis Agent", Description: "Formulate comprehensive answer"},
}

// planErrorFallback is used when the planner call itself fails.
var planErrorFallback = []Task{
	{Agent: "Research Agent", Description: "Information gathering"},
	{Agent: "Processing Agent", Description: "Data analysis"},
}

// ParseTaskList parses a planner reply in line-per-task "Agent: description"
// format. Lines without a colon are skipped; leading list markers and
// numbering are stripped; at most maxPlannedTasks tasks are returned.
func ParseTaskList(text string) []Task {
	var tasks []Task
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}

		agent, desc, _ := strings.Cut(line, ":")
		agent = strings.TrimLeft(agent, "-*• \t")
		agent = strings.TrimLeft(agent, "0123456789. ")
		agent = strings.TrimSpace(agent)
		desc = strings.TrimSpace(desc)
		if agent == "" || desc == "" {
			continue
		}

		tasks = append(tasks, Task{Agent: agent, Description: desc})
		if len(tasks) == maxPlannedTasks {
			break
		}
	}
	return tasks
}

// titleCase uppercases the first rune, for simulated agent labels
// ("research" → "Research Agent").
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
