package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/truemed/scan-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS point_balances (
	user_id TEXT NOT NULL,
	plan    TEXT NOT NULL,
	points  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, plan)
);

CREATE TABLE IF NOT EXISTS usage_records (
	id               TEXT PRIMARY KEY,
	user_id          TEXT,
	provider         TEXT NOT NULL,
	tokens           INTEGER NOT NULL DEFAULT 0,
	cost_usd         REAL NOT NULL DEFAULT 0,
	success          INTEGER NOT NULL DEFAULT 0,
	response_time_ms INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_usage_records_created ON usage_records(created_at);
CREATE INDEX IF NOT EXISTS idx_usage_records_user ON usage_records(user_id);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// GetBalances returns the user's per-plan point balances. Missing rows read
// as zero.
func (s *SQLiteStore) GetBalances(ctx context.Context, userID string) (model.Balances, error) {
	var balances model.Balances

	rows, err := s.db.QueryContext(ctx,
		`SELECT plan, points FROM point_balances WHERE user_id = ?`, userID)
	if err != nil {
		return balances, eris.Wrap(err, "sqlite: query balances")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var planName string
		var points int
		if err := rows.Scan(&planName, &points); err != nil {
			return balances, eris.Wrap(err, "sqlite: scan balance row")
		}
		switch planName {
		case "basic":
			balances.Basic = points
		case "standard":
			balances.Standard = points
		case "business":
			balances.Business = points
		}
	}
	if err := rows.Err(); err != nil {
		return balances, eris.Wrap(err, "sqlite: iterate balances")
	}

	return balances, nil
}

// AddPoints adds (or deducts, with a negative delta) points in one plan
// bucket. Only paid tiers hold balances.
func (s *SQLiteStore) AddPoints(ctx context.Context, userID string, tier model.PlanTier, points int) error {
	if tier == model.TierFree {
		return eris.New("sqlite: free tier holds no point balance")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO point_balances (user_id, plan, points) VALUES (?, ?, ?)
		ON CONFLICT (user_id, plan) DO UPDATE SET points = points + excluded.points`,
		userID, tier.String(), points)
	if err != nil {
		return eris.Wrap(err, "sqlite: add points")
	}
	return nil
}

// RecordUsage inserts one usage record.
func (s *SQLiteStore) RecordUsage(ctx context.Context, rec model.UsageRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (id, user_id, provider, tokens, cost_usd, success, response_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Provider, rec.Tokens, rec.CostUSD, rec.Success, rec.ResponseTimeMS, createdAt)
	if err != nil {
		return eris.Wrap(err, "sqlite: record usage")
	}
	return nil
}

// ListUsage returns usage records matching the filter, newest first.
func (s *SQLiteStore) ListUsage(ctx context.Context, filter UsageFilter) ([]model.UsageRecord, error) {
	query := `SELECT id, user_id, provider, tokens, cost_usd, success, response_time_ms, created_at
		FROM usage_records WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.Provider != "" {
		query += ` AND provider = ?`
		args = append(args, filter.Provider)
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list usage")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.UsageRecord
	for rows.Next() {
		var rec model.UsageRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Provider, &rec.Tokens, &rec.CostUSD,
			&rec.Success, &rec.ResponseTimeMS, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan usage row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate usage")
	}

	return out, nil
}

// SummarizeUsage aggregates usage since the given time.
func (s *SQLiteStore) SummarizeUsage(ctx context.Context, since time.Time) (*UsageSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(SUM(tokens), 0),
		       COALESCE(SUM(cost_usd), 0),
		       COALESCE(AVG(response_time_ms), 0)
		FROM usage_records WHERE created_at >= ?`, since)

	var summary UsageSummary
	var avgMS float64
	if err := row.Scan(&summary.Scans, &summary.Successes, &summary.Tokens, &summary.CostUSD, &avgMS); err != nil {
		return nil, eris.Wrap(err, "sqlite: summarize usage")
	}
	summary.AvgResponseMS = int64(avgMS)

	return &summary, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
