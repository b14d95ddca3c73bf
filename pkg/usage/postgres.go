package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql

	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// PostgresLedger persists usage records in the api_usage table.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger opens a connection pool, verifies connectivity, and
// applies pending migrations. dsn accepts any pgx-compatible connection
// string (URL or keyword form).
func NewPostgresLedger(ctx context.Context, dsn string) (*PostgresLedger, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresLedger{db: db}, nil
}

// Append inserts one record.
func (l *PostgresLedger) Append(ctx context.Context, rec models.UsageRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO api_usage (user_id, job_id, provider, model, tokens_used, estimated_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.UserID, rec.JobID, rec.Provider, rec.Model, rec.TokensUsed, rec.EstimatedCost, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// UserSummary aggregates the user's records: overall totals plus a
// per-provider breakdown.
func (l *PostgresLedger) UserSummary(ctx context.Context, userID string) (*models.UsageSummary, error) {
	summary := models.ZeroUsageSummary(userID)

	row := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(tokens_used), 0), COALESCE(SUM(estimated_cost), 0)
		FROM api_usage WHERE user_id = $1`, userID)
	if err := row.Scan(&summary.TotalCalls, &summary.TotalTokens, &summary.TotalCost); err != nil {
		return nil, fmt.Errorf("query usage totals: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT provider, COUNT(*), COALESCE(SUM(tokens_used), 0), COALESCE(SUM(estimated_cost), 0)
		FROM api_usage WHERE user_id = $1
		GROUP BY provider ORDER BY provider`, userID)
	if err != nil {
		return nil, fmt.Errorf("query provider breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.ProviderUsage
		if err := rows.Scan(&p.Provider, &p.Calls, &p.Tokens, &p.Cost); err != nil {
			return nil, fmt.Errorf("scan provider breakdown: %w", err)
		}
		summary.Providers = append(summary.Providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider breakdown: %w", err)
	}

	return summary, nil
}

// Close releases the connection pool.
func (l *PostgresLedger) Close() error {
	return l.db.Close()
}
