package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically evicts stale registry entries: finished (or never
// attached) jobs past their TTL and credential bundles that were never
// claimed. Without it, job and credential entries would accumulate for the
// lifetime of the process.
type Sweeper struct {
	registry *Registry
	jobTTL   time.Duration
	credTTL  time.Duration
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper for the registry. credTTL bounds how long an
// unclaimed credential bundle may sit in memory and should be much shorter
// than jobTTL.
func NewSweeper(registry *Registry, jobTTL, credTTL, interval time.Duration) *Sweeper {
	return &Sweeper{
		registry: registry,
		jobTTL:   jobTTL,
		credTTL:  credTTL,
		interval: interval,
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Registry sweeper started",
		"job_ttl", s.jobTTL,
		"credential_ttl", s.credTTL,
		"interval", s.interval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Registry sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobs, creds := s.registry.sweep(time.Now().UTC(), s.jobTTL, s.credTTL)
			if jobs > 0 || creds > 0 {
				slog.Info("Swept stale registry entries",
					"jobs_evicted", jobs,
					"credentials_evicted", creds)
			}
		}
	}
}
