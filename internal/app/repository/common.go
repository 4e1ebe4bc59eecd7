package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "lazo-pipeline/internal/app/errors"
	"lazo-pipeline/internal/app/model"
)

// CommonDB provides the SQL shared by the SQLite and PostgreSQL stores
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "sqlite3":
		placeholders = func(n int) string { return "?" }
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
	}
}

// DB exposes the underlying handle
func (c *CommonDB) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	return c.db.Close()
}

// CreateJob inserts a new job record
func (c *CommonDB) CreateJob(ctx context.Context, job *model.SessionJob) error {
	query := fmt.Sprintf(
		`INSERT INTO session_jobs (id, owner_id, state, mode, created_at, updated_at)
		 VALUES (%s, %s, %s, %s, %s, %s)`,
		c.placeholders(1), c.placeholders(2), c.placeholders(3),
		c.placeholders(4), c.placeholders(5), c.placeholders(6),
	)

	_, err := c.db.ExecContext(ctx, query,
		job.ID, job.OwnerID, string(job.State), string(job.Mode),
		job.CreatedAt.UTC(), job.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert job failed: %w", err)
	}
	return nil
}

// GetJob reads a job by id
func (c *CommonDB) GetJob(ctx context.Context, id string) (*model.SessionJob, error) {
	query := fmt.Sprintf(
		`SELECT id, owner_id, state, mode, result, error_message, created_at, updated_at
		 FROM session_jobs
		 WHERE id = %s`,
		c.placeholders(1),
	)

	var (
		job          model.SessionJob
		state, mode  string
		result       sql.NullString
		errorMessage sql.NullString
	)
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.OwnerID,
		&state,
		&mode,
		&result,
		&errorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}

	job.State = model.JobState(state)
	job.Mode = model.ProcessingMode(mode)
	job.ErrorMessage = errorMessage.String
	if result.Valid && result.String != "" {
		var r model.SessionResult
		if err := json.Unmarshal([]byte(result.String), &r); err != nil {
			return nil, fmt.Errorf("decode result of job %s: %w", id, err)
		}
		job.Result = &r
	}
	return &job, nil
}

// CompleteJob stores the result and moves the job to completed
func (c *CommonDB) CompleteJob(ctx context.Context, id string, result *model.SessionResult, now time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	query := fmt.Sprintf(
		`UPDATE session_jobs SET state = %s, result = %s, updated_at = %s
		 WHERE id = %s AND state = %s`,
		c.placeholders(1), c.placeholders(2), c.placeholders(3), c.placeholders(4), c.placeholders(5),
	)
	res, err := c.db.ExecContext(ctx, query,
		string(model.JobStateCompleted), string(payload), now.UTC(), id, string(model.JobStateProcessing),
	)
	if err != nil {
		return fmt.Errorf("%w: complete job: %w", apperrors.ErrUpdateFailed, err)
	}
	return c.checkTransition(ctx, res, id)
}

// FailJob records a message and moves the job to error
func (c *CommonDB) FailJob(ctx context.Context, id string, message string, now time.Time) error {
	query := fmt.Sprintf(
		`UPDATE session_jobs SET state = %s, error_message = %s, updated_at = %s
		 WHERE id = %s AND state = %s`,
		c.placeholders(1), c.placeholders(2), c.placeholders(3), c.placeholders(4), c.placeholders(5),
	)
	res, err := c.db.ExecContext(ctx, query,
		string(model.JobStateError), message, now.UTC(), id, string(model.JobStateProcessing),
	)
	if err != nil {
		return fmt.Errorf("%w: fail job: %w", apperrors.ErrUpdateFailed, err)
	}
	return c.checkTransition(ctx, res, id)
}

// checkTransition tells a missing job apart from one that already reached a terminal state
func (c *CommonDB) checkTransition(ctx context.Context, res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var state string
	query := fmt.Sprintf("SELECT state FROM session_jobs WHERE id = %s", c.placeholders(1))
	err = c.db.QueryRowContext(ctx, query, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrJobNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	return apperrors.ErrJobNotProcessing
}

// GetProfile reads the entitlement record of a caller
func (c *CommonDB) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	query := fmt.Sprintf(
		`SELECT id, plan_type, credits_remaining, premium_credits_remaining,
		        last_credit_renewal, created_at, updated_at
		 FROM profiles
		 WHERE id = %s`,
		c.placeholders(1),
	)

	var (
		p    model.Profile
		plan string
	)
	err := c.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&plan,
		&p.CreditsRemaining,
		&p.PremiumCreditsRemaining,
		&p.LastCreditRenewal,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	p.Plan = model.Plan(plan)
	return &p, nil
}

// UpsertProfile inserts the profile or overwrites plan and credits of an existing one
func (c *CommonDB) UpsertProfile(ctx context.Context, p *model.Profile) error {
	query := fmt.Sprintf(
		`INSERT INTO profiles (id, plan_type, credits_remaining, premium_credits_remaining,
		                       last_credit_renewal, created_at, updated_at)
		 VALUES (%s, %s, %s, %s, %s, %s, %s)
		 ON CONFLICT (id) DO UPDATE SET
		     plan_type = excluded.plan_type,
		     credits_remaining = excluded.credits_remaining,
		     premium_credits_remaining = excluded.premium_credits_remaining,
		     last_credit_renewal = excluded.last_credit_renewal,
		     updated_at = excluded.updated_at`,
		c.placeholders(1), c.placeholders(2), c.placeholders(3), c.placeholders(4),
		c.placeholders(5), c.placeholders(6), c.placeholders(7),
	)

	_, err := c.db.ExecContext(ctx, query,
		p.UserID, string(p.Plan), p.CreditsRemaining, p.PremiumCreditsRemaining,
		p.LastCreditRenewal.UTC(), p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert profile: %w", apperrors.ErrUpdateFailed, err)
	}
	return nil
}

// InsertProfile provisions a profile without touching an existing one
func (c *CommonDB) InsertProfile(ctx context.Context, p *model.Profile) (bool, error) {
	query := fmt.Sprintf(
		`INSERT INTO profiles (id, plan_type, credits_remaining, premium_credits_remaining,
		                       last_credit_renewal, created_at, updated_at)
		 VALUES (%s, %s, %s, %s, %s, %s, %s)
		 ON CONFLICT (id) DO NOTHING`,
		c.placeholders(1), c.placeholders(2), c.placeholders(3), c.placeholders(4),
		c.placeholders(5), c.placeholders(6), c.placeholders(7),
	)

	res, err := c.db.ExecContext(ctx, query,
		p.UserID, string(p.Plan), p.CreditsRemaining, p.PremiumCreditsRemaining,
		p.LastCreditRenewal.UTC(), p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert profile failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func creditColumn(kind model.QuotaKind) string {
	if kind == model.QuotaPremium {
		return "premium_credits_remaining"
	}
	return "credits_remaining"
}

// ConsumeCredit charges one credit. Negative balances are unlimited and left untouched.
func (c *CommonDB) ConsumeCredit(ctx context.Context, userID string, kind model.QuotaKind) error {
	col := creditColumn(kind)
	query := fmt.Sprintf(
		`UPDATE profiles
		 SET %[1]s = CASE WHEN %[1]s < 0 THEN %[1]s ELSE %[1]s - 1 END, updated_at = %[2]s
		 WHERE id = %[3]s AND %[1]s <> 0`,
		col, c.placeholders(1), c.placeholders(2),
	)

	res, err := c.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("%w: consume credit: %w", apperrors.ErrUpdateFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrQuotaExhausted
	}
	return nil
}

// RefundCredit gives back a credit charged for a submission that never started
func (c *CommonDB) RefundCredit(ctx context.Context, userID string, kind model.QuotaKind) error {
	col := creditColumn(kind)
	query := fmt.Sprintf(
		`UPDATE profiles
		 SET %[1]s = CASE WHEN %[1]s < 0 THEN %[1]s ELSE %[1]s + 1 END, updated_at = %[2]s
		 WHERE id = %[3]s`,
		col, c.placeholders(1), c.placeholders(2),
	)

	res, err := c.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("%w: refund credit: %w", apperrors.ErrUpdateFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// RenewCredits resets the monthly grant when the last renewal happened before the current month.
// free gets its standard credits back, ultra its premium credits, pro is unchanged.
func (c *CommonDB) RenewCredits(ctx context.Context, userID string, now time.Time) (bool, error) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	query := fmt.Sprintf(
		`UPDATE profiles SET
		     credits_remaining = CASE WHEN plan_type = '%[1]s' THEN %[2]d ELSE credits_remaining END,
		     premium_credits_remaining = CASE WHEN plan_type = '%[3]s' THEN %[4]d ELSE premium_credits_remaining END,
		     last_credit_renewal = %[5]s,
		     updated_at = %[6]s
		 WHERE id = %[7]s AND last_credit_renewal < %[8]s`,
		model.PlanFree, model.FreeMonthlyCredits,
		model.PlanUltra, model.UltraMonthlyPremiumCredits,
		c.placeholders(1), c.placeholders(2), c.placeholders(3), c.placeholders(4),
	)

	res, err := c.db.ExecContext(ctx, query, now, now, userID, monthStart)
	if err != nil {
		return false, fmt.Errorf("%w: renew credits: %w", apperrors.ErrUpdateFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
