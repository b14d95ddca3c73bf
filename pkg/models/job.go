package models

import "time"

// JobStatus tracks a job through its streaming lifecycle.
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// Terminal reports whether the status is a final state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// Job is one user-submitted prompt processing request. Jobs live in the
// in-memory registry only; they do not survive a process restart.
type Job struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	LessonID    string    `json:"lessonId,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UseRealtime bool      `json:"realtime"`
}

// Provider names recognized in credential bundles and usage records.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderFireworks = "fireworks"
	ProviderUnknown   = "unknown"
)

// CredentialBundle holds caller-supplied provider secrets for a single job.
// A bundle is retrievable from the registry at most once; it never outlives
// the WebSocket attach that consumes it.
type CredentialBundle struct {
	// Keys maps provider name → API key. Empty values are treated as absent.
	Keys map[string]string
	// ModelHint is the caller-selected model for key-matched providers
	// (the original service used this for Fireworks "dobby" models).
	ModelHint string
}

// Key returns the API key for a provider, or "" when not supplied.
func (b CredentialBundle) Key(provider string) string {
	return b.Keys[provider]
}

// Empty reports whether the bundle carries no secrets at all.
func (b CredentialBundle) Empty() bool {
	for _, v := range b.Keys {
		if v != "" {
			return false
		}
	}
	return true
}

// Merge returns a bundle where missing entries are filled from defaults.
// Caller-supplied values always win.
func (b CredentialBundle) Merge(defaults CredentialBundle) CredentialBundle {
	out := CredentialBundle{
		Keys:      make(map[string]string, len(b.Keys)+len(defaults.Keys)),
		ModelHint: b.ModelHint,
	}
	for k, v := range defaults.Keys {
		if v != "" {
			out.Keys[k] = v
		}
	}
	for k, v := range b.Keys {
		if v != "" {
			out.Keys[k] = v
		}
	}
	if out.ModelHint == "" {
		out.ModelHint = defaults.ModelHint
	}
	return out
}
