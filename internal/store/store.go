// Package store persists point balances and provider usage records. The
// extraction core consumes it only through the collaborator interfaces
// (plan.BalanceStore, scan.Recorder); nothing here feeds back into routing
// or confidence.
package store

import (
	"context"
	"time"

	"github.com/truemed/scan-cli/internal/model"
)

// UsageFilter specifies criteria for listing usage records.
type UsageFilter struct {
	UserID   string    `json:"user_id,omitempty"`
	Provider string    `json:"provider,omitempty"`
	Since    time.Time `json:"since,omitempty"`
	Limit    int       `json:"limit,omitempty"`
}

// UsageSummary aggregates usage over a window.
type UsageSummary struct {
	Scans         int     `json:"scans"`
	Successes     int     `json:"successes"`
	Tokens        int     `json:"tokens"`
	CostUSD       float64 `json:"cost_usd"`
	AvgResponseMS int64   `json:"avg_response_ms"`
}

// SuccessRate returns the fraction of successful scans, or 0 for no scans.
func (s UsageSummary) SuccessRate() float64 {
	if s.Scans == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Scans)
}

// Store defines the persistence interface for balances and usage.
type Store interface {
	// Balances
	GetBalances(ctx context.Context, userID string) (model.Balances, error)
	AddPoints(ctx context.Context, userID string, tier model.PlanTier, points int) error

	// Usage
	RecordUsage(ctx context.Context, rec model.UsageRecord) error
	ListUsage(ctx context.Context, filter UsageFilter) ([]model.UsageRecord, error)
	SummarizeUsage(ctx context.Context, since time.Time) (*UsageSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
