package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvsairam/Sentient-Playground/pkg/llm"
	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

func record(userID, provider, model string, tokens int, cost float64) models.UsageRecord {
	return models.UsageRecord{
		UserID:        userID,
		JobID:         "job-1",
		Provider:      provider,
		Model:         model,
		TokensUsed:    tokens,
		EstimatedCost: cost,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestMemoryLedgerSummary(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, record("user-1", models.ProviderOpenAI, "gpt-4o", 100, 0.01)))
	require.NoError(t, l.Append(ctx, record("user-1", models.ProviderOpenAI, "gpt-4o-mini", 200, 0.002)))
	require.NoError(t, l.Append(ctx, record("user-1", models.ProviderAnthropic, "claude-3-5-haiku", 50, 0.001)))
	require.NoError(t, l.Append(ctx, record("user-2", models.ProviderOpenAI, "gpt-4o", 999, 1.0)))

	summary, err := l.UserSummary(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", summary.UserID)
	assert.Equal(t, 3, summary.TotalCalls)
	assert.Equal(t, 350, summary.TotalTokens)
	assert.InDelta(t, 0.013, summary.TotalCost, 1e-9)

	require.Len(t, summary.Providers, 2)
	assert.Equal(t, models.ProviderOpenAI, summary.Providers[0].Provider)
	assert.Equal(t, 2, summary.Providers[0].Calls)
	assert.Equal(t, 300, summary.Providers[0].Tokens)
	assert.Equal(t, models.ProviderAnthropic, summary.Providers[1].Provider)
	assert.Equal(t, 1, summary.Providers[1].Calls)
}

func TestMemoryLedgerEmptyUser(t *testing.T) {
	l := NewMemoryLedger()

	summary, err := l.UserSummary(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Equal(t, "nobody", summary.UserID)
	assert.Zero(t, summary.TotalCalls)
	assert.Zero(t, summary.TotalTokens)
	assert.Zero(t, summary.TotalCost)
	assert.Empty(t, summary.Providers)
}

func TestTrackerRecord(t *testing.T) {
	l := NewMemoryLedger()
	tracker := NewTracker(l, nil)

	tracker.Record(context.Background(), "job-9", "user-9", "gpt-4o-mini",
		llm.Usage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000})

	records := l.Records()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "job-9", rec.JobID)
	assert.Equal(t, "user-9", rec.UserID)
	assert.Equal(t, models.ProviderOpenAI, rec.Provider)
	assert.Equal(t, "gpt-4o-mini", rec.Model)
	assert.Equal(t, 2_000_000, rec.TokensUsed)
	assert.InDelta(t, 0.75, rec.EstimatedCost, 1e-9)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestTrackerUnknownModel(t *testing.T) {
	l := NewMemoryLedger()
	tracker := NewTracker(l, nil)

	tracker.Record(context.Background(), "job-9", "user-9", "mystery-model",
		llm.Usage{PromptTokens: 10, CompletionTokens: 10})

	records := l.Records()
	require.Len(t, records, 1)
	assert.Equal(t, models.ProviderUnknown, records[0].Provider)
	assert.Zero(t, records[0].EstimatedCost)
}

func TestTrackerNilSafe(t *testing.T) {
	var tracker *Tracker
	// Must not panic.
	tracker.Record(context.Background(), "job", "user", "gpt-4o", llm.Usage{})

	tracker = NewTracker(nil, nil)
	tracker.Record(context.Background(), "job", "user", "gpt-4o", llm.Usage{})
}
