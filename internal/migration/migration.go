package migration

import (
	"context"
	"fmt"

	"keystats/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	d := dialectFor(db)

	if err := r.createKeyInfosTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create key_infos table")
	}

	if err := r.createUsersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create users table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

type dialect struct {
	serialPK string
}

func dialectFor(db *sqlx.DB) dialect {
	if db.DriverName() == "postgres" {
		return dialect{serialPK: "BIGSERIAL PRIMARY KEY"}
	}
	return dialect{serialPK: "INTEGER PRIMARY KEY AUTOINCREMENT"}
}

// key_infos.created_at holds naive local wall-clock times
func (r *MigrationRunner) createKeyInfosTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS key_infos (
			id %s,
			created_at TIMESTAMP,
			fingerprint VARCHAR(64),
			repeat_letter_score DOUBLE PRECISION,
			increasing_letter_score DOUBLE PRECISION,
			decreasing_letter_score DOUBLE PRECISION,
			magic_letter_score DOUBLE PRECISION,
			score DOUBLE PRECISION,
			unique_letters_count INTEGER
		)
	`, d.serialPK))
	return err
}

func (r *MigrationRunner) createUsersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE,
			full_name VARCHAR(255),
			hashed_password VARCHAR(255) NOT NULL,
			disabled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_key_infos_created_at ON key_infos(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_key_infos_score ON key_infos(score DESC)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			return err
		}
	}

	return nil
}
