package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truemed/scan-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "scan_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_Balances(t *testing.T) {
	t.Parallel()

	st := newTestSQLite(t)
	ctx := context.Background()

	// Unknown users read as all-zero balances.
	balances, err := st.GetBalances(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, model.Balances{}, balances)

	require.NoError(t, st.AddPoints(ctx, "user-1", model.TierBasic, 100))
	require.NoError(t, st.AddPoints(ctx, "user-1", model.TierBusiness, 40))
	require.NoError(t, st.AddPoints(ctx, "user-2", model.TierStandard, 10))

	balances, err = st.GetBalances(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.Balances{Basic: 100, Business: 40}, balances)
	assert.Equal(t, model.TierBusiness, balances.Tier())

	balances, err = st.GetBalances(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, model.Balances{Standard: 10}, balances)
}

func TestSQLite_AddPointsAccumulatesAndDeducts(t *testing.T) {
	t.Parallel()

	st := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, st.AddPoints(ctx, "user-1", model.TierStandard, 30))
	require.NoError(t, st.AddPoints(ctx, "user-1", model.TierStandard, 20))
	require.NoError(t, st.AddPoints(ctx, "user-1", model.TierStandard, -15))

	balances, err := st.GetBalances(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 35, balances.Standard)
}

func TestSQLite_AddPointsRejectsFreeTier(t *testing.T) {
	t.Parallel()

	st := newTestSQLite(t)

	err := st.AddPoints(context.Background(), "user-1", model.TierFree, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "free tier holds no point balance")
}

func TestSQLite_Usage(t *testing.T) {
	t.Parallel()

	st := newTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	records := []model.UsageRecord{
		{ID: "r1", UserID: "user-1", Provider: "google-vision", Tokens: 300, CostUSD: 0.0015, Success: true, ResponseTimeMS: 420, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "r2", UserID: "user-1", Provider: "tesseract-local", Tokens: 280, Success: true, ResponseTimeMS: 1800, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "r3", UserID: "user-2", Provider: "google-vision", Tokens: 0, Success: false, ResponseTimeMS: 90, CreatedAt: now.Add(-1 * time.Hour)},
	}
	for _, rec := range records {
		require.NoError(t, st.RecordUsage(ctx, rec))
	}

	t.Run("list newest first", func(t *testing.T) {
		got, err := st.ListUsage(ctx, UsageFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "r3", got[0].ID)
		assert.Equal(t, "r1", got[2].ID)
	})

	t.Run("filter by user", func(t *testing.T) {
		got, err := st.ListUsage(ctx, UsageFilter{UserID: "user-1"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filter by provider", func(t *testing.T) {
		got, err := st.ListUsage(ctx, UsageFilter{Provider: "tesseract-local"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "r2", got[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := st.ListUsage(ctx, UsageFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "r3", got[0].ID)
	})

	t.Run("since filter", func(t *testing.T) {
		got, err := st.ListUsage(ctx, UsageFilter{Since: now.Add(-90 * time.Minute)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "r3", got[0].ID)
	})

	t.Run("round trip preserves fields", func(t *testing.T) {
		got, err := st.ListUsage(ctx, UsageFilter{Provider: "google-vision", UserID: "user-1"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "r1", got[0].ID)
		assert.Equal(t, 300, got[0].Tokens)
		assert.InDelta(t, 0.0015, got[0].CostUSD, 1e-9)
		assert.True(t, got[0].Success)
		assert.Equal(t, int64(420), got[0].ResponseTimeMS)
	})
}

func TestSQLite_SummarizeUsage(t *testing.T) {
	t.Parallel()

	st := newTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	records := []model.UsageRecord{
		{ID: "r1", Provider: "google-vision", Tokens: 100, CostUSD: 0.0015, Success: true, ResponseTimeMS: 400, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "r2", Provider: "google-vision", Tokens: 200, CostUSD: 0.0030, Success: true, ResponseTimeMS: 600, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "r3", Provider: "mistral-ocr", Tokens: 0, Success: false, ResponseTimeMS: 200, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "old", Provider: "google-vision", Tokens: 999, CostUSD: 1.0, Success: true, ResponseTimeMS: 100, CreatedAt: now.Add(-48 * time.Hour)},
	}
	for _, rec := range records {
		require.NoError(t, st.RecordUsage(ctx, rec))
	}

	summary, err := st.SummarizeUsage(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Scans)
	assert.Equal(t, 2, summary.Successes)
	assert.Equal(t, 300, summary.Tokens)
	assert.InDelta(t, 0.0045, summary.CostUSD, 1e-9)
	assert.Equal(t, int64(400), summary.AvgResponseMS)
	assert.InDelta(t, 2.0/3.0, summary.SuccessRate(), 0.0001)
}

func TestUsageSummary_SuccessRate(t *testing.T) {
	t.Parallel()

	assert.Zero(t, UsageSummary{}.SuccessRate())
	assert.InDelta(t, 0.5, UsageSummary{Scans: 4, Successes: 2}.SuccessRate(), 0.0001)
}
