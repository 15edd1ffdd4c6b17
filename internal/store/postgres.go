package store

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/truemed/scan-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// so the Postgres store is testable without a database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
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
	cost_usd         DOUBLE PRECISION NOT NULL DEFAULT 0,
	success          BOOLEAN NOT NULL DEFAULT FALSE,
	response_time_ms BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_usage_records_created ON usage_records(created_at);
CREATE INDEX IF NOT EXISTS idx_usage_records_user ON usage_records(user_id);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// GetBalances returns the user's per-plan point balances. Missing rows read
// as zero.
func (s *PostgresStore) GetBalances(ctx context.Context, userID string) (model.Balances, error) {
	var balances model.Balances

	rows, err := s.pool.Query(ctx,
		`SELECT plan, points FROM point_balances WHERE user_id = $1`, userID)
	if err != nil {
		return balances, eris.Wrap(err, "postgres: query balances")
	}
	defer rows.Close()

	for rows.Next() {
		var planName string
		var points int
		if err := rows.Scan(&planName, &points); err != nil {
			return balances, eris.Wrap(err, "postgres: scan balance row")
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
		return balances, eris.Wrap(err, "postgres: iterate balances")
	}

	return balances, nil
}

// AddPoints adds (or deducts, with a negative delta) points in one plan
// bucket. The upsert relies on the store's atomic increment; concurrent scans
// never read-modify-write balances in application code.
func (s *PostgresStore) AddPoints(ctx context.Context, userID string, tier model.PlanTier, points int) error {
	if tier == model.TierFree {
		return eris.New("postgres: free tier holds no point balance")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO point_balances (user_id, plan, points) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, plan) DO UPDATE SET points = point_balances.points + EXCLUDED.points`,
		userID, tier.String(), points)
	if err != nil {
		return eris.Wrap(err, "postgres: add points")
	}
	return nil
}

// RecordUsage inserts one usage record.
func (s *PostgresStore) RecordUsage(ctx context.Context, rec model.UsageRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO usage_records (id, user_id, provider, tokens, cost_usd, success, response_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.UserID, rec.Provider, rec.Tokens, rec.CostUSD, rec.Success, rec.ResponseTimeMS, createdAt)
	if err != nil {
		return eris.Wrap(err, "postgres: record usage")
	}
	return nil
}

// ListUsage returns usage records matching the filter, newest first.
func (s *PostgresStore) ListUsage(ctx context.Context, filter UsageFilter) ([]model.UsageRecord, error) {
	query := `SELECT id, user_id, provider, tokens, cost_usd, success, response_time_ms, created_at
		FROM usage_records WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += ` AND user_id = $` + strconv.Itoa(len(args))
	}
	if filter.Provider != "" {
		args = append(args, filter.Provider)
		query += ` AND provider = $` + strconv.Itoa(len(args))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list usage")
	}
	defer rows.Close()

	var out []model.UsageRecord
	for rows.Next() {
		var rec model.UsageRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Provider, &rec.Tokens, &rec.CostUSD,
			&rec.Success, &rec.ResponseTimeMS, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan usage row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate usage")
	}

	return out, nil
}

// SummarizeUsage aggregates usage since the given time.
func (s *PostgresStore) SummarizeUsage(ctx context.Context, since time.Time) (*UsageSummary, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(tokens), 0),
		       COALESCE(SUM(cost_usd), 0),
		       COALESCE(AVG(response_time_ms), 0)
		FROM usage_records WHERE created_at >= $1`, since)

	var summary UsageSummary
	var avgMS float64
	if err := row.Scan(&summary.Scans, &summary.Successes, &summary.Tokens, &summary.CostUSD, &avgMS); err != nil {
		return nil, eris.Wrap(err, "postgres: summarize usage")
	}
	summary.AvgResponseMS = int64(avgMS)

	return &summary, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
