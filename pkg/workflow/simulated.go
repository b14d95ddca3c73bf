package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// taskUpdateSteps is how many TASK_UPDATE events the simulated engine emits
// per task (at 33/66/100%).
const taskUpdateSteps = 3

// SimulatedEngine emits a deterministic GRID workflow without any external
// calls. It backs demo mode and is the fallback when a job carries no
// usable provider credentials.
type SimulatedEngine struct {
	pacing Pacing
}

// NewSimulatedEngine creates a simulated engine with the given pacing.
func NewSimulatedEngine(pacing Pacing) *SimulatedEngine {
	return &SimulatedEngine{pacing: pacing}
}

// Process implements Engine.
func (e *SimulatedEngine) Process(ctx context.Context, job models.Job) <-chan models.ProgressEvent {
	ch := make(chan models.ProgressEvent, eventBuffer)
	go e.run(ctx, job, ch)
	return ch
}

func (e *SimulatedEngine) run(ctx context.Context, job models.Job, ch chan<- models.ProgressEvent) {
	defer close(ch)

	slog.Info("Starting simulated GRID workflow",
		"job_id", job.ID, "user_id", ownerID(job), "prompt", truncate(job.Prompt, 100))

	ev := models.NewEvent(models.EventRouted, job.ID)
	ev.NodeID = "user"
	ev.NodeLabel = "User Query"
	ev.Detail = "Query received and routed to GRID"
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Route) {
		return
	}

	workflowType := ClassifyPrompt(job.Prompt)
	ev = models.NewEvent(models.EventClassified, job.ID)
	ev.NodeID = "router"
	ev.NodeLabel = "GRID Router"
	ev.Detail = fmt.Sprintf("Classified as %s workflow", workflowType)
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Classify) {
		return
	}

	taskNames := simulatedPlans[workflowType]
	ev = models.NewEvent(models.EventWorkflowPlanned, job.ID)
	ev.NodeID = "planner"
	ev.NodeLabel = "Workflow Planner"
	ev.Detail = fmt.Sprintf("Decomposed into %d tasks: %s",
		len(taskNames), strings.Join(taskNames, ", "))
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Plan) {
		return
	}

	results := make([]string, 0, len(taskNames))
	for i, name := range taskNames {
		nodeID := fmt.Sprintf("agent_%d", i)
		label := titleCase(name) + " Agent"

		ev = models.NewEvent(models.EventTaskAssigned, job.ID)
		ev.NodeID = nodeID
		ev.NodeLabel = label
		ev.Detail = fmt.Sprintf("Assigned %s task", name)
		if !emit(ctx, ch, ev) {
			return
		}
		if !pause(ctx, e.pacing.Assign) {
			return
		}

		for step := 1; step <= taskUpdateSteps; step++ {
			if !pause(ctx, e.pacing.Step) {
				return
			}
			progress := float64(step) * 100 / taskUpdateSteps
			ev = models.NewEvent(models.EventTaskUpdate, job.ID)
			ev.NodeID = nodeID
			ev.NodeLabel = label
			ev.Detail = fmt.Sprintf("Processing %s: %d%% complete", name, int(progress))
			ev.Progress = progress
			if !emit(ctx, ch, ev) {
				return
			}
		}

		results = append(results, name+" completed")

		ev = models.NewEvent(models.EventTaskDone, job.ID)
		ev.NodeID = nodeID
		ev.NodeLabel = label
		ev.Detail = fmt.Sprintf("%s task completed", titleCase(name))
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
	ev.Detail = "Composing results from all agents"
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Compose) {
		return
	}

	answer := composeSimulatedAnswer(results, job.Prompt)
	ev = models.NewEvent(models.EventFinal, job.ID)
	ev.NodeID = "final"
	ev.NodeLabel = "Final Answer"
	ev.Detail = answer
	ev.PartialText = answer
	ev.Complete = true
	if !emit(ctx, ch, ev) {
		return
	}
	if !pause(ctx, e.pacing.Final) {
		return
	}

	ev = models.NewEvent(models.EventComposeDone, job.ID)
	ev.NodeID = "composer"
	ev.NodeLabel = "Result Composer"
	ev.Detail = "Final answer composed"
	if !emit(ctx, ch, ev) {
		return
	}

	slog.Info("Simulated GRID workflow completed", "job_id", job.ID)
}

// composeSimulatedAnswer builds the deterministic demo narrative from the
// completed task labels.
func composeSimulatedAnswer(results []string, prompt string) string {
	return fmt.Sprintf(
		"This demonstration showed how the Sentient GRID routes your query '%s...' "+
			"through multiple specialized agents. The workflow involved: %s. "+
			"Each agent worked on a different aspect of your request, and their "+
			"results were composed into this unified answer. This multi-agent "+
			"approach combines specialized expertise rather than relying on a "+
			"single monolithic model.",
		truncate(prompt, 100), strings.Join(results, ", "))
}

// truncate shortens s to at most n bytes for log/display purposes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
