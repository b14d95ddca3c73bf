package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pvsairam/Sentient-Playground/pkg/llm"
	"github.com/pvsairam/Sentient-Playground/pkg/models"
	"github.com/pvsairam/Sentient-Playground/pkg/usage"
)

// RealtimeEngine drives a completion provider through the GRID workflow.
// Every provider failure is recovered locally with deterministic fallback
// content: the event sequence always reaches a terminal FINAL regardless of
// what the provider does.
type RealtimeEngine struct {
	provider llm.Provider
	models   ModelSelection
	tracker  *usage.Tracker
	pacing   Pacing
}

// NewRealtimeEngine creates a provider-backed engine.
func NewRealtimeEngine(provider llm.Provider, selection ModelSelection, tracker *usage.Tracker, pacing Pacing) *RealtimeEngine {
	return &RealtimeEngine{
		provider: provider,
		models:   selection,
		tracker:  tracker,
		pacing:   pacing,
	}
}

// Process implements Engine.
func (e *RealtimeEngine) Process(ctx context.Context, job models.Job) <-chan models.ProgressEvent {
	ch := make(chan models.ProgressEvent, eventBuffer)
	go e.run(ctx, job, ch)
	return ch
}

func (e *RealtimeEngine) run(ctx context.Context, job models.Job, ch chan<- models.ProgressEvent) {
	defer close(ch)

	slog.Info("Starting realtime GRID workflow",
		"job_id", job.ID, "user_id", ownerID(job),
		"router_model", e.models.Router, "prompt", truncate(job.Prompt, 100))

	if e.models.Router == "" {
		ev := models.NewEvent(models.EventError, job.ID)
		ev.Detail = "No API keys configured. Provide an OpenAI, Anthropic, or Fireworks key."
		emit(ctx, ch, ev)
		return
	}

	ev := models.NewEvent(models.EventRouted, job.ID)
	ev.NodeID = "user"
	ev.NodeLabel = "User Query"
	ev.Detail = fmt.Sprintf("Query routed to GRID using %s", e.models.Router)
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Route) {
		return
	}

	workflowType, reasoning := e.classify(ctx, job)
	ev = models.NewEvent(models.EventClassified, job.ID)
	ev.NodeID = "router"
	ev.NodeLabel = "GRID Router"
	ev.Detail = fmt.Sprintf("Classified as '%s' - %s", workflowType, reasoning)
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Classify) {
		return
	}

	tasks := e.plan(ctx, job, workflowType)
	ev = models.NewEvent(models.EventWorkflowPlanned, job.ID)
	ev.NodeID = "planner"
	ev.NodeLabel = "Workflow Planner"
	ev.Detail = fmt.Sprintf("Decomposed into %d specialized tasks", len(tasks))
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Plan) {
		return
	}

	for i := range tasks {
		nodeID := fmt.Sprintf("agent_%d", i)

		ev = models.NewEvent(models.EventTaskAssigned, job.ID)
		ev.NodeID = nodeID
		ev.NodeLabel = tasks[i].Agent
		ev.Detail = fmt.Sprintf("Assigned to %s: %s", tasks[i].Agent, tasks[i].Description)
		if !emit(ctx, ch, ev) {
			return
		}
		if !pause(ctx, e.pacing.Assign) {
			return
		}

		result, ok := e.executeTask(ctx, job, tasks[i], nodeID, ch)
		if !ok {
			return
		}
		tasks[i].result = result

		ev = models.NewEvent(models.EventTaskDone, job.ID)
		ev.NodeID = nodeID
		ev.NodeLabel = tasks[i].Agent
		ev.Detail = fmt.Sprintf("%s completed successfully", tasks[i].Agent)
		if !emit(ctx, ch, ev) {
			return
		}
		if !pause(ctx, e.pacing.TaskDone) {
			return
		}
	}

	ev = models.NewEvent(models.EventComposeStart, job.ID)
	ev.NodeID = "composer"
	ev.NodeLabel = "Result Composer"
	ev.Detail = "Synthesizing results from all agents..."
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Compose) {
		return
	}

	if !e.compose(ctx, job, tasks, ch) {
		return
	}

	ev = models.NewEvent(models.EventComposeDone, job.ID)
	ev.NodeID = "composer"
	ev.NodeLabel = "Result Composer"
	ev.Detail = "Final answer complete"
	if !emit(ctx, ch, ev) {
		return
	}

	slog.Info("Realtime GRID workflow completed", "job_id", job.ID)
}

// classify asks the router model to categorize the prompt. Any failure
// falls back to general_query; classification must never fail the job.
func (e *RealtimeEngine) classify(ctx context.Context, job models.Job) (WorkflowType, string) {
	comp, err := e.provider.Complete(ctx, e.models.Router, []llm.Message{
		{
			Role: llm.RoleSystem,
			Content: "You are a query classifier for the Sentient GRID. Classify the " +
				"user's query into ONE category: explanation, summarization, research, " +
				"code_generation, or general_query. Respond with JSON: " +
				`{"category": "...", "reasoning": "brief explanation"}`,
		},
		{Role: llm.RoleUser, Content: job.Prompt},
	}, llm.Options{Temperature: 0.3, MaxTokens: 150})
	if err != nil {
		slog.Error("Classification call failed", "job_id", job.ID, "error", err)
		return TypeGeneralQuery, "Fallback classification"
	}

	e.tracker.Record(ctx, job.ID, ownerID(job), e.models.Router, comp.Usage)
	return classifyResponse(comp.Text)
}

// plan asks the router model for 2-4 subtasks in "Agent: description"
// line format. Parsing zero tasks or a failed call substitutes fixed
// fallback plans.
func (e *RealtimeEngine) plan(ctx context.Context, job models.Job, workflowType WorkflowType) []Task {
	comp, err := e.provider.Complete(ctx, e.models.Router, []llm.Message{
		{
			Role: llm.RoleSystem,
			Content: "You are a workflow planner for the Sentient GRID. Break down the " +
				"user's query into 2-4 specific subtasks that different specialized " +
				"agents should handle. Each task should have an agent type and description.",
		},
		{
			Role: llm.RoleUser,
			Content: fmt.Sprintf("Query type: %s\nQuery: %s\n\nProvide 2-4 subtasks as a "+
				"simple list, one per line, format: 'AgentName: description'",
				workflowType, job.Prompt),
		},
	}, llm.Options{Temperature: 0.5, MaxTokens: 300})
	if err != nil {
		slog.Error("Planning call failed", "job_id", job.ID, "error", err)
		return append([]Task(nil), planErrorFallback...)
	}

	e.tracker.Record(ctx, job.ID, ownerID(job), e.models.Router, comp.Usage)

	tasks := ParseTaskList(comp.Text)
	if len(tasks) == 0 {
		return append([]Task(nil), planFallback...)
	}
	return tasks
}

// executeTask runs one subtask on the worker model, bracketing it with a
// 30% "processing" update and a 100% completion update carrying the result.
// A failed call substitutes a fallback result; the task still completes.
// ok is false only when the consumer went away.
func (e *RealtimeEngine) executeTask(ctx context.Context, job models.Job, task Task, nodeID string, ch chan<- models.ProgressEvent) (string, bool) {
	ev := models.NewEvent(models.EventTaskUpdate, job.ID)
	ev.NodeID = nodeID
	ev.NodeLabel = task.Agent
	ev.Detail = fmt.Sprintf("%s: Processing with %s...", task.Agent, e.models.Worker)
	ev.Progress = 30
	if !emit(ctx, ch, ev) {
		return "", false
	}

	result := ""
	comp, err := e.provider.Complete(ctx, e.models.Worker, []llm.Message{
		{
			Role: llm.RoleSystem,
			Content: fmt.Sprintf("You are the %s in a multi-agent system. Your specific "+
				"role: %s. Provide a focused, concise result for your assigned subtask.",
				task.Agent, task.Description),
		},
		{
			Role: llm.RoleUser,
			Content: fmt.Sprintf("Original user query: %s\n\nYour subtask: %s\n\n"+
				"Provide your specialized result.", job.Prompt, task.Description),
		},
	}, llm.Options{Temperature: 0.7, MaxTokens: 400})

	ev = models.NewEvent(models.EventTaskUpdate, job.ID)
	ev.NodeID = nodeID
	ev.NodeLabel = task.Agent
	ev.Progress = 100
	if err != nil {
		slog.Error("Task execution failed",
			"job_id", job.ID, "agent", task.Agent, "error", err)
		result = "Processed: " + task.Description
		ev.Detail = fmt.Sprintf("%s: Completed (fallback)", task.Agent)
	} else {
		e.tracker.Record(ctx, job.ID, ownerID(job), e.models.Worker, comp.Usage)
		result = comp.Text
		ev.Detail = fmt.Sprintf("%s: Complete", task.Agent)
	}
	ev.Result = result
	if !emit(ctx, ch, ev) {
		return "", false
	}

	return result, true
}

// compose streams the final answer from the router model, emitting one
// FINAL event per fragment and a terminal FINAL with the accumulated text.
// Any failure before or during the stream degrades to a single terminal
// fallback FINAL. ok is false only when the consumer went away.
func (e *RealtimeEngine) compose(ctx context.Context, job models.Job, tasks []Task, ch chan<- models.ProgressEvent) bool {
	var summary strings.Builder
	for _, t := range tasks {
		result := t.result
		if result == "" {
			result = t.Description
		}
		fmt.Fprintf(&summary, "- %s: %s\n", t.Agent, result)
	}

	chunks, err := e.provider.Stream(ctx, e.models.Router, []llm.Message{
		{
			Role: llm.RoleSystem,
			Content: "You are the final synthesis agent in the Sentient GRID. Compose a " +
				"comprehensive, helpful answer based on the workflow that was executed. " +
				"Be informative and educational.",
		},
		{
			Role: llm.RoleUser,
			Content: fmt.Sprintf("User asked: %s\n\nOur multi-agent workflow executed:\n%s\n"+
				"Provide a clear, comprehensive answer to the user's question.",
				job.Prompt, summary.String()),
		},
	}, llm.Options{Temperature: 0.7, MaxTokens: 800})
	if err != nil {
		slog.Error("Composition call failed", "job_id", job.ID, "error", err)
		return e.emitComposeFallback(ctx, job, len(tasks), ch)
	}

	var fullText strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			slog.Error("Composition stream failed", "job_id", job.ID, "error", chunk.Err)
			return e.emitComposeFallback(ctx, job, len(tasks), ch)
		}
		if chunk.Final {
			if chunk.Usage != nil {
				e.tracker.Record(ctx, job.ID, ownerID(job), e.models.Router, *chunk.Usage)
			}
			continue
		}
		if chunk.Text == "" {
			continue
		}

		fullText.WriteString(chunk.Text)
		ev := models.NewEvent(models.EventFinal, job.ID)
		ev.NodeID = "final"
		ev.NodeLabel = "Final Answer"
		ev.PartialText = chunk.Text
		ev.FullText = fullText.String()
		ev.Streaming = true
		if !emit(ctx, ch, ev) {
			return false
		}
	}
	if ctx.Err() != nil {
		return false
	}

	ev := models.NewEvent(models.EventFinal, job.ID)
	ev.NodeID = "final"
	ev.NodeLabel = "Final Answer"
	ev.Detail = fullText.String()
	ev.FullText = fullText.String()
	ev.Complete = true
	return emit(ctx, ch, ev)
}

// emitComposeFallback sends the single deterministic terminal FINAL used
// when composition fails.
func (e *RealtimeEngine) emitComposeFallback(ctx context.Context, job models.Job, taskCount int, ch chan<- models.ProgressEvent) bool {
	fallback := fmt.Sprintf(
		"I've processed your query '%s' through our multi-agent GRID workflow. "+
			"The workflow involved %d specialized agents working together. While I "+
			"encountered an issue generating the detailed response, the demonstration "+
			"shows how the Sentient GRID routes queries through specialized agents "+
			"for optimal results.",
		truncate(job.Prompt, 100), taskCount)

	ev := models.NewEvent(models.EventFinal, job.ID)
	ev.NodeID = "final"
	ev.NodeLabel = "Final Answer"
	ev.Detail = fallback
	ev.FullText = fallback
	ev.Complete = true
	return emit(ctx, ch, ev)
}
