package models

import "time"

// Progress event types, emitted in the order defined by the workflow
// state machine: ROUTED → CLASSIFIED → WORKFLOW_PLANNED →
// {TASK_ASSIGNED → TASK_UPDATE* → TASK_DONE}×N → COMPOSE_START →
// FINAL×1+ → COMPOSE_DONE. The session coordinator appends its own
// COMPLETE marker (or ERROR on failure paths).
const (
	EventRouted          = "ROUTED"
	EventClassified      = "CLASSIFIED"
	EventWorkflowPlanned = "WORKFLOW_PLANNED"
	EventTaskAssigned    = "TASK_ASSIGNED"
	EventTaskUpdate      = "TASK_UPDATE"
	EventTaskDone        = "TASK_DONE"
	EventComposeStart    = "COMPOSE_START"
	EventComposeDone     = "COMPOSE_DONE"
	EventFinal           = "FINAL"
	EventComplete        = "COMPLETE"
	EventError           = "ERROR"
)

// ProgressEvent is one typed, timestamped message describing a workflow
// state change. Events are immutable once emitted and are forwarded to the
// client verbatim. Optional fields are omitted from the JSON payload when
// not applicable.
type ProgressEvent struct {
	Type        string    `json:"type"`
	JobID       string    `json:"jobId"`
	Timestamp   time.Time `json:"ts"`
	NodeID      string    `json:"nodeId,omitempty"`
	NodeLabel   string    `json:"nodeLabel,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Progress    float64   `json:"progress,omitempty"`
	PartialText string    `json:"partialText,omitempty"`
	FullText    string    `json:"fullText,omitempty"`
	Streaming   bool      `json:"streaming,omitempty"`
	Result      string    `json:"result,omitempty"`
	Complete    bool      `json:"complete,omitempty"`
}

// NewEvent constructs an event stamped with the current UTC time.
func NewEvent(eventType, jobID string) ProgressEvent {
	return ProgressEvent{
		Type:      eventType,
		JobID:     jobID,
		Timestamp: time.Now().UTC(),
	}
}
