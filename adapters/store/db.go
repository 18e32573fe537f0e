// Package store implements the record store and user repository over sqlx,
// on PostgreSQL (lib/pq) or SQLite (modernc.org/sqlite).
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"keystats/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", driver))
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(errors.DatabaseError(err.Error()), "failed to open %s database", driver)
	}

	if driver == DriverSQLite {
		// a single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY on concurrent writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to ping %s database", driver)
	}
	return db, nil
}

// naive drops whatever zone the driver attached and keeps the wall clock
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// isUniqueViolation detects unique constraint failures from either driver
func isUniqueViolation(err error, column string) bool {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return pqErr.Code == "23505" && strings.Contains(pqErr.Constraint+pqErr.Detail, column)
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "."+column)
}
