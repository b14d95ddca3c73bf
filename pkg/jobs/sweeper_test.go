package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

func TestSweeperEvictsInBackground(t *testing.T) {
	r := New()
	job := r.CreateJob("p", "", "", false)
	r.SetStatus(job.ID, models.JobStatusDone)

	s := NewSweeper(r, 0, 0, 10*time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		_, ok := r.Get(job.ID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "sweeper should evict the finished job")
}

func TestSweeperStopIsIdempotentSafe(t *testing.T) {
	r := New()
	s := NewSweeper(r, time.Hour, time.Minute, time.Minute)

	// Stop before Start is a no-op.
	s.Stop()

	s.Start(context.Background())
	s.Start(context.Background()) // second Start is ignored
	s.Stop()

	assert.Zero(t, r.Len())
}
