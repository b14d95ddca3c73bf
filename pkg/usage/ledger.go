// Package usage provides the append-only usage ledger and the cost
// estimation applied to completion-provider token counts.
package usage

import (
	"context"

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// Ledger is an append-only store of per-call usage records with aggregate
// queries by user. The workflow engines only ever write; the HTTP facade
// only ever reads.
type Ledger interface {
	Append(ctx context.Context, rec models.UsageRecord) error
	UserSummary(ctx context.Context, userID string) (*models.UsageSummary, error)
	Close() error
}
