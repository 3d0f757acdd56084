// Package databasetest provides an in-memory database.DB for tests.
package databasetest

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/errs"
)

// Result is a canned answer to a query.
type Result struct {
	Columns []string
	Rows    [][]any
	Err     error
}

// Call records one statement sent to the fake.
type Call struct {
	SQL  string
	Args []any
}

type handler struct {
	match string
	fn    func(args []any) Result
}

// DB answers queries whose text contains a registered substring. Handlers are
// tried in registration order. Unmatched queries fail with a query error.
type DB struct {
	mu       sync.Mutex
	dialect  database.Dialect
	handlers []handler
	queries  []Call
	execs    []Call
	execErr  error
	closed   bool
}

var _ database.DB = (*DB)(nil)

func New(d database.Dialect) *DB {
	return &DB{dialect: d}
}

// On registers a fixed result for queries containing match.
func (db *DB) On(match string, r Result) *DB {
	return db.OnFunc(match, func([]any) Result { return r })
}

// OnFunc registers a result computed from the query arguments.
func (db *DB) OnFunc(match string, fn func(args []any) Result) *DB {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.handlers = append(db.handlers, handler{match: match, fn: fn})
	return db
}

// FailExec makes every following Exec return err.
func (db *DB) FailExec(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.execErr = err
}

// Queries returns the Query and QueryRow calls seen so far.
func (db *DB) Queries() []Call {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Call(nil), db.queries...)
}

// Execs returns the Exec calls seen so far.
func (db *DB) Execs() []Call {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Call(nil), db.execs...)
}

func (db *DB) Closed() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.closed
}

func (db *DB) Ping(ctx context.Context) error { return ctx.Err() }

func (db *DB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
}

func (db *DB) Dialect() database.Dialect { return db.dialect }

func (db *DB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "query failed", err)
	}
	r, err := db.answer(sql, args)
	if err != nil {
		return nil, err
	}
	return &Rows{result: r, pos: -1}, nil
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) (database.Row, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &row{rows: rows.(*Rows)}, nil
}

func (db *DB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(errs.ErrKindTimeout, "exec failed", err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.execs = append(db.execs, Call{SQL: sql, Args: args})
	if db.execErr != nil {
		return 0, db.execErr
	}
	return 1, nil
}

func (db *DB) answer(sql string, args []any) (Result, error) {
	db.mu.Lock()
	db.queries = append(db.queries, Call{SQL: sql, Args: args})
	handlers := db.handlers
	db.mu.Unlock()

	for _, h := range handlers {
		if strings.Contains(sql, h.match) {
			r := h.fn(args)
			if r.Err != nil {
				return Result{}, r.Err
			}
			return r, nil
		}
	}
	return Result{}, errs.Newf(errs.ErrKindQueryFailed, "databasetest: no result registered for %q", strings.TrimSpace(sql))
}

// Rows iterates a Result.
type Rows struct {
	result Result
	pos    int
	closed bool
}

func (r *Rows) Next() bool {
	if r.closed || r.pos+1 >= len(r.result.Rows) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Columns() ([]string, error) { return r.result.Columns, nil }
func (r *Rows) Close()                     { r.closed = true }
func (r *Rows) Err() error                 { return nil }

// Scan assigns the current row to dest. Each dest must be a pointer whose
// element type the value converts to; nil values become the zero value.
func (r *Rows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.result.Rows) {
		return errs.New(errs.ErrKindQueryFailed, "databasetest: scan without row")
	}
	values := r.result.Rows[r.pos]
	if len(dest) != len(values) {
		return errs.Newf(errs.ErrKindQueryFailed, "databasetest: %d destinations for %d columns", len(dest), len(values))
	}
	for i, d := range dest {
		if err := assign(d, values[i]); err != nil {
			return errs.Wrap(errs.ErrKindQueryFailed, fmt.Sprintf("databasetest: column %d", i), err)
		}
	}
	return nil
}

type row struct {
	rows *Rows
}

func (r *row) Scan(dest ...any) error {
	defer r.rows.Close()
	if !r.rows.Next() {
		return errs.New(errs.ErrKindNotFound, "databasetest: no rows")
	}
	return r.rows.Scan(dest...)
}

func assign(dest, value any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination %T is not a non-nil pointer", dest)
	}
	elem := dv.Elem()
	if value == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	vv := reflect.ValueOf(value)
	switch {
	case vv.Type().AssignableTo(elem.Type()):
		elem.Set(vv)
	case vv.Type().ConvertibleTo(elem.Type()):
		elem.Set(vv.Convert(elem.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, elem.Type())
	}
	return nil
}
