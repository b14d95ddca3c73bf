package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/pvsairam/Sentient-Playground/pkg/llm"
	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// Tracker turns provider token counts into ledger records. Ledger failures
// are logged and swallowed: accounting must never disturb the event stream.
type Tracker struct {
	ledger  Ledger
	pricing *PricingTable
}

// NewTracker creates a tracker writing to the given ledger.
func NewTracker(ledger Ledger, pricing *PricingTable) *Tracker {
	if pricing == nil {
		pricing = DefaultPricing()
	}
	return &Tracker{ledger: ledger, pricing: pricing}
}

// Record appends one usage record for a successful provider call.
func (t *Tracker) Record(ctx context.Context, jobID, userID, model string, u llm.Usage) {
	if t == nil || t.ledger == nil {
		return
	}

	rate := t.pricing.Lookup(model)
	rec := models.UsageRecord{
		UserID:        userID,
		JobID:         jobID,
		Provider:      rate.Provider,
		Model:         model,
		TokensUsed:    u.Total(),
		EstimatedCost: rate.Cost(u),
		CreatedAt:     time.Now().UTC(),
	}

	if err := t.ledger.Append(ctx, rec); err != nil {
		slog.Error("Failed to record usage",
			"job_id", jobID, "model", model, "error", err)
		return
	}
	slog.Info("Usage recorded",
		"job_id", jobID, "model", model,
		"tokens", rec.TokensUsed, "cost", rec.EstimatedCost)
}
