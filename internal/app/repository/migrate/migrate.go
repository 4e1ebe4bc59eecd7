package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBatchSize = 1000

// Stats counts what a migration run copied
type Stats struct {
	Profiles int
	Jobs     int
	Skipped  int
	LastJob  string
}

// SQLiteToPostgres copies profiles and session jobs from a SQLite store into PostgreSQL.
// Jobs are copied in id order starting after afterJobID so an interrupted run can resume.
// Rows that already exist in the destination are left untouched.
func SQLiteToPostgres(ctx context.Context, src, dst *sql.DB, afterJobID string, batchSize int, logger *zap.Logger) (*Stats, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stats := &Stats{LastJob: afterJobID}
	if err := copyProfiles(ctx, src, dst, stats, logger); err != nil {
		return stats, err
	}

	for {
		copied, err := copyJobBatch(ctx, src, dst, batchSize, stats, logger)
		if err != nil {
			return stats, err
		}
		if copied < batchSize {
			break
		}
	}

	logger.Info("Data migration completed",
		zap.Int("profiles", stats.Profiles),
		zap.Int("jobs", stats.Jobs),
		zap.Int("skipped", stats.Skipped),
		zap.String("last_job", stats.LastJob))
	return stats, nil
}

func copyProfiles(ctx context.Context, src, dst *sql.DB, stats *Stats, logger *zap.Logger) error {
	rows, err := src.QueryContext(ctx, `SELECT id, plan_type, credits_remaining, premium_credits_remaining,
		last_credit_renewal, created_at, updated_at FROM profiles ORDER BY id`)
	if err != nil {
		return fmt.Errorf("read profiles: %w", err)
	}
	defer rows.Close()

	tx, err := dst.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO profiles (id, plan_type, credits_remaining,
		premium_credits_remaining, last_credit_renewal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for rows.Next() {
		var (
			id, plan                  string
			credits, premium          int
			renewal, created, updated time.Time
		)
		if err := rows.Scan(&id, &plan, &credits, &premium, &renewal, &created, &updated); err != nil {
			logger.Warn("Failed to read profile row", zap.Error(err))
			stats.Skipped++
			continue
		}
		if _, err := stmt.ExecContext(ctx, id, plan, credits, premium, renewal, created, updated); err != nil {
			logger.Warn("Failed to insert profile", zap.String("id", id), zap.Error(err))
			stats.Skipped++
			continue
		}
		stats.Profiles++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate profiles: %w", err)
	}
	return tx.Commit()
}

func copyJobBatch(ctx context.Context, src, dst *sql.DB, batchSize int, stats *Stats, logger *zap.Logger) (int, error) {
	rows, err := src.QueryContext(ctx, `SELECT id, owner_id, state, mode, result, error_message, created_at, updated_at
		FROM session_jobs WHERE id > ? ORDER BY id LIMIT ?`, stats.LastJob, batchSize)
	if err != nil {
		return 0, fmt.Errorf("read jobs: %w", err)
	}
	defer rows.Close()

	tx, err := dst.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO session_jobs (id, owner_id, state, mode, result,
		error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	read := 0
	for rows.Next() {
		var (
			id, owner, state, mode string
			result, errorMessage   sql.NullString
			created, updated       time.Time
		)
		if err := rows.Scan(&id, &owner, &state, &mode, &result, &errorMessage, &created, &updated); err != nil {
			logger.Warn("Failed to read job row", zap.Error(err))
			stats.Skipped++
			read++
			continue
		}
		read++
		stats.LastJob = id

		if strings.TrimSpace(owner) == "" {
			logger.Warn("Skipping job without owner", zap.String("id", id))
			stats.Skipped++
			continue
		}
		if _, err := stmt.ExecContext(ctx, id, owner, state, mode, result, errorMessage, created, updated); err != nil {
			logger.Warn("Failed to insert job", zap.String("id", id), zap.Error(err))
			stats.Skipped++
			continue
		}
		stats.Jobs++
	}
	if err := rows.Err(); err != nil {
		return read, fmt.Errorf("iterate jobs: %w", err)
	}
	return read, tx.Commit()
}
