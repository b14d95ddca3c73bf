package usage

import (
	"context"
	"sync"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// MemoryLedger is an in-process Ledger. It backs tests and DB-less
// deployments; records are lost on restart.
type MemoryLedger struct {
	mu      sync.Mutex
	records []models.UsageRecord
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// Append stores a record.
func (l *MemoryLedger) Append(_ context.Context, rec models.UsageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

// UserSummary aggregates the user's records with a per-provider breakdown.
func (l *MemoryLedger) UserSummary(_ context.Context, userID string) (*models.UsageSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary := models.ZeroUsageSummary(userID)
	byProvider := make(map[string]*models.ProviderUsage)
	var order []string

	for _, rec := range l.records {
		if rec.UserID != userID {
			continue
		}
		summary.TotalCalls++
		summary.TotalTokens += rec.TokensUsed
		summary.TotalCost += rec.EstimatedCost

		p, ok := byProvider[rec.Provider]
		if !ok {
			p = &models.ProviderUsage{Provider: rec.Provider}
			byProvider[rec.Provider] = p
			order = append(order, rec.Provider)
		}
		p.Calls++
		p.Tokens += rec.TokensUsed
		p.Cost += rec.EstimatedCost
	}

	for _, provider := range order {
		summary.Providers = append(summary.Providers, *byProvider[provider])
	}
	return summary, nil
}

// Records returns a snapshot of all stored records. Test helper.
func (l *MemoryLedger) Records() []models.UsageRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.UsageRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Close is a no-op.
func (l *MemoryLedger) Close() error {
	return nil
}
