package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"lazo-pipeline/internal/app/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_jobs (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    state TEXT NOT NULL,
    mode TEXT NOT NULL,
    result TEXT,
    error_message TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_jobs_owner ON session_jobs(owner_id);

CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    plan_type TEXT NOT NULL DEFAULT 'free',
    credits_remaining INTEGER NOT NULL DEFAULT 3,
    premium_credits_remaining INTEGER NOT NULL DEFAULT 0,
    last_credit_renewal TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

// SQLiteDB is the single-node job and quota store
type SQLiteDB struct {
	*repository.CommonDB
}

// NewSQLiteDB opens the database at dsn and creates the schema.
// An empty dsn opens a private in-memory database.
func NewSQLiteDB(dsn string) (*SQLiteDB, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers, one connection keeps the conditional updates ordered
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteDB{CommonDB: repository.NewCommonDB(db, "sqlite3")}, nil
}

// FileDSN builds a dsn for an on-disk database with a busy timeout
func FileDSN(path string) string {
	return fmt.Sprintf("file:%s?mode=rwc&_busy_timeout=5000", path)
}
