// Package sqlite is the embedded database.DB used for a local comparison
// history when no PostgreSQL server is configured.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/mattn/go-sqlite3"
)

// Driver is a SQLite implementation of database.DB backed by database/sql.
type Driver struct {
	db *sql.DB
}

// New opens the database file named by cfg.DSN ("sqlite://" prefix allowed)
// and pings it.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	dsn := strings.TrimPrefix(cfg.DSN, "sqlite://")
	if dsn == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sqlite: empty DSN")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "open sqlite", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)

	d := &Driver{db: db}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// Ping checks that the database file is still usable.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close closes the underlying *sql.DB.
func (d *Driver) Close() {
	_ = d.db.Close()
}

// Dialect reports DialectSQLite.
func (d *Driver) Dialect() database.Dialect {
	return database.DialectSQLite
}

// Query executes a statement that returns multiple rows.
func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &sqliteRows{rows: rows}, nil
}

// QueryRow executes a statement expected to return at most one row.
func (d *Driver) QueryRow(ctx context.Context, query string, args ...any) (database.Row, error) {
	return &sqliteRow{row: d.db.QueryRowContext(ctx, query, args...)}, nil
}

// Exec runs a statement that returns no rows and reports the rows affected.
func (d *Driver) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "exec failed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err, "rows affected")
	}
	return n, nil
}

type sqliteRows struct {
	rows *sql.Rows
}

func (r *sqliteRows) Next() bool                 { return r.rows.Next() }
func (r *sqliteRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *sqliteRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *sqliteRows) Close()                     { _ = r.rows.Close() }
func (r *sqliteRows) Err() error                 { return r.rows.Err() }

type sqliteRow struct {
	row *sql.Row
}

func (r *sqliteRow) Scan(dest ...any) error {
	if err := r.row.Scan(dest...); err != nil {
		return mapError(err, "scan failed")
	}
	return nil
}

// mapError translates go-sqlite3 errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return errs.Wrap(classifyCode(sqliteErr.Code), fmt.Sprintf("%s: %s", msg, sqliteErr.Error()), err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func classifyCode(code sqlite3.ErrNo) errs.ErrKind {
	switch code {
	case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly:
		return errs.ErrKindPermissionDenied
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return errs.ErrKindTimeout
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB:
		return errs.ErrKindConnectionFailed
	case sqlite3.ErrNotFound:
		return errs.ErrKindNotFound
	case sqlite3.ErrConstraint, sqlite3.ErrMismatch, sqlite3.ErrTooBig:
		return errs.ErrKindInvalidInput
	default:
		return errs.ErrKindQueryFailed
	}
}
