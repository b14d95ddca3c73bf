// Package workflow implements the staged GRID workflow engines. An engine
// turns one job into an ordered sequence of progress events:
// ROUTED → CLASSIFIED → WORKFLOW_PLANNED → per-task execution →
// COMPOSE_START → FINAL → COMPOSE_DONE. The simulated engine is fully
// deterministic; the realtime engine drives a completion provider and
// degrades to deterministic fallbacks on every provider failure.
package workflow

import (
	"context"
	"time"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// eventBuffer bounds the engine → coordinator channel. Producers block at
// their next yield point once the consumer stops draining.
const eventBuffer = 16

// Engine produces the ordered progress-event sequence for a job. The
// returned channel is closed when the sequence ends or ctx is cancelled;
// no event is ever sent after close.
type Engine interface {
	Process(ctx context.Context, job models.Job) <-chan models.ProgressEvent
}

// Pacing holds the deliberate delays between stage transitions. They exist
// for demo readability only; correctness does not depend on them, and tests
// run with NoPacing.
type Pacing struct {
	Route    time.Duration
	Classify time.Duration
	Plan     time.Duration
	Assign   time.Duration
	Step     time.Duration
	TaskDone time.Duration
	Compose  time.Duration
	Final    time.Duration
}

// DefaultPacing mirrors the pacing of the original demo service.
func DefaultPacing() Pacing {
	return Pacing{
		Route:    500 * time.Millisecond,
		Classify: 700 * time.Millisecond,
		Plan:     800 * time.Millisecond,
		Assign:   500 * time.Millisecond,
		Step:     400 * time.Millisecond,
		TaskDone: 400 * time.Millisecond,
		Compose:  time.Second,
		Final:    300 * time.Millisecond,
	}
}

// NoPacing disables all inter-stage delays.
func NoPacing() Pacing {
	return Pacing{}
}

// emit delivers an event unless the consumer is gone. Returns false when
// the engine should stop producing.
func emit(ctx context.Context, ch chan<- models.ProgressEvent, ev models.ProgressEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// pause sleeps for d, returning false if ctx is cancelled first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// ownerID returns the accounting owner of a job: the supplied user id, or
// "local" for anonymous jobs.
func ownerID(job models.Job) string {
	if job.UserID != "" {
		return job.UserID
	}
	return "local"
}
