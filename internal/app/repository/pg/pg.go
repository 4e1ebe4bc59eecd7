package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"lazo-pipeline/internal/app/repository"
)

// Schema creates the PostgreSQL tables
const Schema = `
CREATE TABLE IF NOT EXISTS session_jobs (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    state TEXT NOT NULL,
    mode TEXT NOT NULL,
    result JSONB,
    error_message TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_jobs_owner ON session_jobs(owner_id);

CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    plan_type TEXT NOT NULL DEFAULT 'free',
    credits_remaining INTEGER NOT NULL DEFAULT 3,
    premium_credits_remaining INTEGER NOT NULL DEFAULT 0,
    last_credit_renewal TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);
`

// PostgresDB is the shared job and quota store
type PostgresDB struct {
	*repository.CommonDB
	db *sql.DB
}

// NewPostgresDB opens a connection pool. The connection is not verified until first use.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewPostgresDBFromDB(db), nil
}

// NewPostgresDBFromDB wraps an existing handle
func NewPostgresDBFromDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{
		CommonDB: repository.NewCommonDB(db, "postgres"),
		db:       db,
	}
}

// Migrate creates the tables if they do not exist
func (p *PostgresDB) Migrate() error {
	if _, err := p.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
