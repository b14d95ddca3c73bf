package models

import "time"

// UsageRecord is one append-only accounting entry, written once per
// successful completion-provider call.
type UsageRecord struct {
	UserID        string    `json:"userId"`
	JobID         string    `json:"jobId"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	TokensUsed    int       `json:"tokensUsed"`
	EstimatedCost float64   `json:"estimatedCost"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProviderUsage is the per-provider slice of a user's usage summary.
type ProviderUsage struct {
	Provider string  `json:"provider"`
	Calls    int     `json:"calls"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
}

// UsageSummary aggregates a user's recorded provider usage.
type UsageSummary struct {
	UserID      string          `json:"userId"`
	TotalCalls  int             `json:"totalCalls"`
	TotalTokens int             `json:"totalTokens"`
	TotalCost   float64         `json:"totalCost"`
	Providers   []ProviderUsage `json:"providers"`
}

// ZeroUsageSummary returns an empty summary for a user. The usage endpoint
// degrades to this when the ledger is unreachable.
func ZeroUsageSummary(userID string) *UsageSummary {
	return &UsageSummary{UserID: userID, Providers: []ProviderUsage{}}
}
