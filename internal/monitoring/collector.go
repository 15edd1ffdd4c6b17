// Package monitoring builds point-in-time health snapshots from usage data.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/truemed/scan-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of scan health.
type MetricsSnapshot struct {
	Scans         int     `json:"scans"`
	Successes     int     `json:"successes"`
	FailRate      float64 `json:"fail_rate"`
	Tokens        int     `json:"tokens"`
	CostUSD       float64 `json:"cost_usd"`
	AvgResponseMS int64   `json:"avg_response_ms"`

	// Per-provider attempt counts within the window.
	ProviderAttempts map[string]int `json:"provider_attempts"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the usage store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of usage metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		ProviderAttempts: make(map[string]int),
		LookbackHours:    lookbackHours,
		CollectedAt:      time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	summary, err := c.store.SummarizeUsage(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: summarize usage")
	}

	snap.Scans = summary.Scans
	snap.Successes = summary.Successes
	snap.Tokens = summary.Tokens
	snap.CostUSD = summary.CostUSD
	snap.AvgResponseMS = summary.AvgResponseMS
	if summary.Scans > 0 {
		snap.FailRate = 1 - summary.SuccessRate()
	}

	records, err := c.store.ListUsage(ctx, store.UsageFilter{Since: cutoff, Limit: 10000})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list usage")
	}
	for _, rec := range records {
		snap.ProviderAttempts[rec.Provider]++
	}

	return snap, nil
}
