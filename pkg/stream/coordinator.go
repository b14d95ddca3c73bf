// Package stream binds WebSocket connections to jobs: it consumes the
// job's single-use credentials, selects a workflow engine, and drains the
// engine's event sequence onto the socket.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/pvsairam/Sentient-Playground/pkg/jobs"
	"github.com/pvsairam/Sentient-Playground/pkg/models"
	"github.com/pvsairam/Sentient-Playground/pkg/workflow"
)

// EngineFactory selects the workflow engine for a job given whatever
// credentials survived to attach time.
type EngineFactory interface {
	EngineFor(job models.Job, bundle models.CredentialBundle) workflow.Engine
}

// Coordinator manages WebSocket session lifecycles. One Coordinator serves
// the whole process; each connection is handled on its caller's goroutine.
type Coordinator struct {
	registry *jobs.Registry
	engines  EngineFactory

	// Active connections: connection id → *session
	mu       sync.RWMutex
	sessions map[string]*session

	writeTimeout time.Duration
}

// session is one active WebSocket client.
type session struct {
	id    string
	jobID string
	conn  *websocket.Conn
	ctx   context.Context
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(registry *jobs.Registry, engines EngineFactory, writeTimeout time.Duration) *Coordinator {
	return &Coordinator{
		registry:     registry,
		engines:      engines,
		sessions:     make(map[string]*session),
		writeTimeout: writeTimeout,
	}
}

// ActiveSessions returns the count of connected clients.
func (c *Coordinator) ActiveSessions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// HandleConnection runs one streaming session to completion. Blocks until
// the event sequence ends, the client disconnects, or an error occurs; the
// connection is always deregistered and closed on return.
func (c *Coordinator) HandleConnection(parentCtx context.Context, conn *websocket.Conn, jobID string) {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	s := &session{
		id:    uuid.New().String(),
		jobID: jobID,
		conn:  conn,
		ctx:   ctx,
	}
	c.register(s)
	defer c.unregister(s)

	slog.Info("WebSocket connected", "job_id", jobID, "connection_id", s.id)

	job, ok := c.registry.Get(jobID)
	if !ok {
		ev := models.NewEvent(models.EventError, jobID)
		ev.Detail = "Job not found"
		_ = c.send(s, ev)
		return
	}

	// Sole read of the job's credentials. The bundle is gone from the
	// registry from here on, whatever happens to this session.
	bundle, _ := c.registry.TakeCredentials(jobID)

	engine := c.engines.EngineFor(job, bundle)
	c.registry.SetStatus(jobID, models.JobStatusRunning)

	// The client never sends application messages; the read loop exists to
	// detect disconnects and cancel the engine drive promptly.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range engine.Process(ctx, job) {
		if err := c.send(s, ev); err != nil {
			slog.Warn("Failed to send event, terminating session",
				"job_id", jobID, "connection_id", s.id, "error", err)
			c.registry.SetStatus(jobID, models.JobStatusError)
			cancel()
			return
		}
	}

	if ctx.Err() != nil {
		// Client went away mid-stream; the engine stopped at its next
		// yield point. No further sends.
		slog.Info("WebSocket disconnected mid-stream",
			"job_id", jobID, "connection_id", s.id)
		c.registry.SetStatus(jobID, models.JobStatusError)
		return
	}

	complete := models.NewEvent(models.EventComplete, jobID)
	if err := c.send(s, complete); err != nil {
		slog.Warn("Failed to send completion marker",
			"job_id", jobID, "connection_id", s.id, "error", err)
		c.registry.SetStatus(jobID, models.JobStatusError)
		return
	}

	c.registry.SetStatus(jobID, models.JobStatusDone)
	slog.Info("Streaming session completed", "job_id", jobID, "connection_id", s.id)
}

// send marshals and writes one event with the configured write timeout.
func (c *Coordinator) send(s *session, ev models.ProgressEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(s.ctx, c.writeTimeout)
	defer cancel()
	return s.conn.Write(writeCtx, websocket.MessageText, data)
}

func (c *Coordinator) register(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.id] = s
}

func (c *Coordinator) unregister(s *session) {
	c.mu.Lock()
	delete(c.sessions, s.id)
	c.mu.Unlock()

	_ = s.conn.Close(websocket.StatusNormalClosure, "")
}
