// Package jobs provides the in-memory job registry: job metadata and the
// short-lived credential bundles handed from job creation to WebSocket attach.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// Registry owns all job state for the process. Job metadata and credential
// bundles live in two independently locked maps: credentials are deleted on
// first read while job entries stay until the sweeper evicts them, and the
// two lifecycles must not contend with each other.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job

	credMu sync.Mutex
	creds  map[string]credEntry
}

type credEntry struct {
	bundle   models.CredentialBundle
	attached time.Time
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		jobs:  make(map[string]*models.Job),
		creds: make(map[string]credEntry),
	}
}

// CreateJob stores a new pending job and returns it. The id is a random
// 128-bit token (uuid v4), so collisions are not handled.
func (r *Registry) CreateJob(prompt, lessonID, userID string, useRealtime bool) models.Job {
	job := models.Job{
		ID:          uuid.New().String(),
		Prompt:      prompt,
		LessonID:    lessonID,
		UserID:      userID,
		Status:      models.JobStatusPending,
		CreatedAt:   time.Now().UTC(),
		UseRealtime: useRealtime,
	}

	r.mu.Lock()
	r.jobs[job.ID] = &job
	r.mu.Unlock()

	return job
}

// Get returns a copy of the job, so callers never alias registry state.
func (r *Registry) Get(jobID string) (models.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}

// SetStatus updates a job's status. Unknown ids are ignored.
func (r *Registry) SetStatus(jobID string, status models.JobStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = status
	}
}

// AttachCredentials stores a credential bundle for the job, overwriting any
// prior bundle for the same id.
func (r *Registry) AttachCredentials(jobID string, bundle models.CredentialBundle) {
	r.credMu.Lock()
	defer r.credMu.Unlock()
	r.creds[jobID] = credEntry{bundle: bundle, attached: time.Now().UTC()}
}

// TakeCredentials atomically reads and removes the bundle for the job.
// Exactly one caller observes the bundle; all later calls see absent.
// This is the mechanism that keeps provider secrets out of long-lived
// job state.
func (r *Registry) TakeCredentials(jobID string) (models.CredentialBundle, bool) {
	r.credMu.Lock()
	defer r.credMu.Unlock()
	entry, ok := r.creds[jobID]
	if !ok {
		return models.CredentialBundle{}, false
	}
	delete(r.creds, jobID)
	return entry.bundle, true
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// sweep removes terminal jobs older than jobTTL, pending jobs that were
// never attached within jobTTL, and credential bundles that were never
// claimed within credTTL. Returns (jobs evicted, bundles evicted).
func (r *Registry) sweep(now time.Time, jobTTL, credTTL time.Duration) (int, int) {
	var jobsEvicted, credsEvicted int

	r.mu.Lock()
	for id, job := range r.jobs {
		if now.Sub(job.CreatedAt) >= jobTTL && job.Status != models.JobStatusRunning {
			delete(r.jobs, id)
			jobsEvicted++
		}
	}
	r.mu.Unlock()

	r.credMu.Lock()
	for id, entry := range r.creds {
		if now.Sub(entry.attached) >= credTTL {
			delete(r.creds, id)
			credsEvicted++
		}
	}
	r.credMu.Unlock()

	return jobsEvicted, credsEvicted
}
