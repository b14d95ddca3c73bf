package workflow

import "strings"

// WorkflowType is the category a prompt is routed into.
type WorkflowType string

const (
	TypeExplanation    WorkflowType = "explanation"
	TypeSummarization  WorkflowType = "summarization"
	TypeResearch       WorkflowType = "research"
	TypeCodeGeneration WorkflowType = "code_generation"
	TypeGeneralQuery   WorkflowType = "general_query"
)

// classifierOrder fixes the priority of keyword classification: when a
// prompt matches several categories the first entry wins.
var classifierOrder = []struct {
	workflowType WorkflowType
	keywords     []string
}{
	{TypeExplanation, []string{"explain", "what is", "how does", "define"}},
	{TypeSummarization, []string{"summarize", "summary", "headlines"}},
	{TypeResearch, []string{"research", "find", "search", "look up"}},
	{TypeCodeGeneration, []string{"code", "program", "implement"}},
}

// ClassifyPrompt classifies a prompt by case-insensitive keyword match.
// Deterministic: the same prompt always yields the same type.
func ClassifyPrompt(prompt string) WorkflowType {
	lower := strings.ToLower(prompt)
	for _, entry := range classifierOrder {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.workflowType
			}
		}
	}
	return TypeGeneralQuery
}

// classifyResponse scans a classifier model's reply for the first
// recognized category keyword, in the same priority order as keyword
// classification. Anything unrecognized falls through to general_query.
func classifyResponse(text string) (WorkflowType, string) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "explanation"):
		return TypeExplanation, "Query seeks to understand a concept"
	case strings.Contains(lower, "summarization"):
		return TypeSummarization, "Query requests a summary"
	case strings.Contains(lower, "research"):
		return TypeResearch, "Query requires information gathering"
	case strings.Contains(lower, "code"):
		return TypeCodeGeneration, "Query involves coding"
	default:
		return TypeGeneralQuery, "General information request"
	}
}
