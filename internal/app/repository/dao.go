package repository

import (
	"context"
	"time"

	"lazo-pipeline/internal/app/model"
)

// JobDAO persists session jobs. Terminal writes only succeed while the job is processing.
type JobDAO interface {
	CreateJob(ctx context.Context, job *model.SessionJob) error
	GetJob(ctx context.Context, id string) (*model.SessionJob, error)
	CompleteJob(ctx context.Context, id string, result *model.SessionResult, now time.Time) error
	FailJob(ctx context.Context, id string, message string, now time.Time) error
}

// QuotaDAO reads and charges caller entitlements
type QuotaDAO interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, profile *model.Profile) error

	// InsertProfile creates the profile unless one already exists and reports whether it did
	InsertProfile(ctx context.Context, profile *model.Profile) (bool, error)

	// ConsumeCredit decrements the column selected by kind in a single conditional update.
	// Returns ErrQuotaExhausted when no credit is left.
	ConsumeCredit(ctx context.Context, userID string, kind model.QuotaKind) error
	RefundCredit(ctx context.Context, userID string, kind model.QuotaKind) error

	// RenewCredits applies the monthly grant once per calendar month and reports whether it did
	RenewCredits(ctx context.Context, userID string, now time.Time) (bool, error)
}

// Store is a relational backend serving both jobs and quotas
type Store interface {
	JobDAO
	QuotaDAO
	Close() error
}
