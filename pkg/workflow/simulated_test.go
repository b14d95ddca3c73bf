package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// drain collects every event from the engine channel, failing the test if the
// channel does not close within a reasonable deadline.
func drain(t *testing.T, ch <-chan models.ProgressEvent) []models.ProgressEvent {
	t.Helper()
	var events []models.ProgressEvent
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatalf("engine channel not closed, got %d events so far", len(events))
		}
	}
}

func eventTypes(events []models.ProgressEvent) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func TestSimulatedEngineEventSequence(t *testing.T) {
	engine := NewSimulatedEngine(NoPacing())
	job := models.Job{ID: "job-1", Prompt: "Explain quantum entanglement"}

	events := drain(t, engine.Process(context.Background(), job))

	// explanation workflow plans 3 tasks, each with ASSIGNED + 3 UPDATEs + DONE
	want := []string{
		models.EventRouted,
		models.EventClassified,
		models.EventWorkflowPlanned,
		models.EventTaskAssigned, models.EventTaskUpdate, models.EventTaskUpdate, models.EventTaskUpdate, models.EventTaskDone,
		models.EventTaskAssigned, models.EventTaskUpdate, models.EventTaskUpdate, models.EventTaskUpdate, models.EventTaskDone,
		models.EventTaskAssigned, models.EventTaskUpdate, models.EventTaskUpdate, models.EventTaskUpdate, models.EventTaskDone,
		models.EventComposeStart,
		models.EventFinal,
		models.EventComposeDone,
	}
	assert.Equal(t, want, eventTypes(events))
}

func TestSimulatedEngineEventFields(t *testing.T) {
	engine := NewSimulatedEngine(NoPacing())
	job := models.Job{ID: "job-2", Prompt: "Explain quantum entanglement"}

	events := drain(t, engine.Process(context.Background(), job))
	require.NotEmpty(t, events)

	for _, ev := range events {
		assert.Equal(t, job.ID, ev.JobID)
		assert.False(t, ev.Timestamp.IsZero())
		assert.NotEmpty(t, ev.NodeID, "event %s", ev.Type)
	}

	routed := events[0]
	assert.Equal(t, "user", routed.NodeID)
	assert.Equal(t, "User Query", routed.NodeLabel)

	classified := events[1]
	assert.Equal(t, "router", classified.NodeID)
	assert.Contains(t, classified.Detail, "explanation")

	planned := events[2]
	assert.Equal(t, "planner", planned.NodeID)
	assert.Contains(t, planned.Detail, "3 tasks")
}

func TestSimulatedEngineTaskProgress(t *testing.T) {
	engine := NewSimulatedEngine(NoPacing())
	job := models.Job{ID: "job-3", Prompt: "Explain this"}

	events := drain(t, engine.Process(context.Background(), job))

	var updates []models.ProgressEvent
	for _, ev := range events {
		if ev.Type == models.EventTaskUpdate && ev.NodeID == "agent_0" {
			updates = append(updates, ev)
		}
	}
	require.Len(t, updates, 3)
	last := 0.0
	for _, ev := range updates {
		assert.Greater(t, ev.Progress, last, "progress must be monotonic")
		last = ev.Progress
	}
	assert.InDelta(t, 100, updates[2].Progress, 0.01)
}

func TestSimulatedEngineFinalBeforeComposeDone(t *testing.T) {
	engine := NewSimulatedEngine(NoPacing())
	job := models.Job{ID: "job-4", Prompt: "Summarize the headlines"}

	events := drain(t, engine.Process(context.Background(), job))
	require.GreaterOrEqual(t, len(events), 2)

	final := events[len(events)-2]
	composeDone := events[len(events)-1]
	assert.Equal(t, models.EventFinal, final.Type)
	assert.True(t, final.Complete)
	assert.NotEmpty(t, final.Detail)
	assert.Equal(t, final.Detail, final.PartialText)
	assert.Equal(t, models.EventComposeDone, composeDone.Type)
}

func TestSimulatedEngineLongPromptTruncated(t *testing.T) {
	engine := NewSimulatedEngine(NoPacing())
	long := strings.Repeat("x", 500)
	job := models.Job{ID: "job-5", Prompt: long}

	events := drain(t, engine.Process(context.Background(), job))
	require.NotEmpty(t, events)

	final := events[len(events)-2]
	require.Equal(t, models.EventFinal, final.Type)
	assert.NotContains(t, final.Detail, long, "answer embeds a truncated prompt")
	assert.Contains(t, final.Detail, long[:100])
}

func TestSimulatedEngineCancellation(t *testing.T) {
	engine := NewSimulatedEngine(DefaultPacing())
	ctx, cancel := context.WithCancel(context.Background())
	job := models.Job{ID: "job-6", Prompt: "Explain something"}

	ch := engine.Process(ctx, job)
	// Let the first event arrive, then cancel mid-workflow.
	ev, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, models.EventRouted, ev.Type)
	cancel()

	events := drain(t, ch)
	for _, got := range events {
		assert.NotEqual(t, models.EventComposeDone, got.Type, "workflow must not complete after cancel")
	}
}
