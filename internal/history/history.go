// Package history records comparison runs in a relational table so that past
// drift between two databases can be listed later.
//
// The store speaks only database.DB and works against PostgreSQL or SQLite.
// Timestamps are stored as unix milliseconds to keep the table portable.
package history

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/logger"
)

// Table is the name of the table runs are stored in.
const Table = "schemadiff_runs"

const (
	// DefaultLimit is used by Recent when limit is not positive.
	DefaultLimit = 20
	// MaxLimit caps the number of runs one Recent call returns.
	MaxLimit = 500
)

var columns = []string{
	"id", "database_a", "database_b",
	"equal_count", "children_differ_count", "left_only_count", "right_only_count", "different_count",
	"ddl", "created_at",
}

// Run is one recorded comparison.
type Run struct {
	ID        string
	DatabaseA string
	DatabaseB string
	Counts    map[compare.Mode]int
	DDL       string
	CreatedAt time.Time
}

// Changes is the number of non-EQUAL diffs of the run.
func (r Run) Changes() int {
	n := 0
	for m, c := range r.Counts {
		if m != compare.ModeEqual {
			n += c
		}
	}
	return n
}

// Store persists runs.
type Store struct {
	db    database.DB
	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

// New returns a Store backed by db. A nil log discards output.
func New(db database.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		db:    db,
		log:   log.Component("history"),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Migrate creates the runs table and its lookup index if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	d := s.db.Dialect()
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(36) PRIMARY KEY,
	database_a VARCHAR(255) NOT NULL,
	database_b VARCHAR(255) NOT NULL,
	equal_count INTEGER NOT NULL,
	children_differ_count INTEGER NOT NULL,
	left_only_count INTEGER NOT NULL,
	right_only_count INTEGER NOT NULL,
	different_count INTEGER NOT NULL,
	ddl TEXT NOT NULL,
	created_at BIGINT NOT NULL
)`, d.QuoteIdent(Table)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (database_a, created_at)`,
			d.QuoteIdent(Table+"_database_a_idx"), d.QuoteIdent(Table)),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	s.log.Debug("history table ready")
	return nil
}

// Record stores res together with the forward DDL rendered for it.
func (s *Store) Record(ctx context.Context, res *compare.Result, ddl string) (Run, error) {
	if res == nil {
		return Run{}, errs.New(errs.ErrKindInvalidInput, "history: nil comparison result")
	}

	run := Run{
		ID:        s.newID(),
		DatabaseA: res.DatabaseA,
		DatabaseB: res.DatabaseB,
		Counts:    res.CountByMode(),
		DDL:       ddl,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	query, args, err := database.Insert(Table, s.db.Dialect()).
		Set("id", run.ID).
		Set("database_a", run.DatabaseA).
		Set("database_b", run.DatabaseB).
		Set("equal_count", run.Counts[compare.ModeEqual]).
		Set("children_differ_count", run.Counts[compare.ModeChildrenDiffer]).
		Set("left_only_count", run.Counts[compare.ModeLeftOnly]).
		Set("right_only_count", run.Counts[compare.ModeRightOnly]).
		Set("different_count", run.Counts[compare.ModeDifferent]).
		Set("ddl", run.DDL).
		Set("created_at", run.CreatedAt.UnixMilli()).
		Build()
	if err != nil {
		return Run{}, err
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return Run{}, err
	}

	s.log.InfoWith("comparison recorded", map[string]interface{}{
		"id":         run.ID,
		"database_a": run.DatabaseA,
		"database_b": run.DatabaseB,
		"changes":    run.Changes(),
	})
	return run, nil
}

// Recent returns the latest runs, newest first, skipping the newest offset
// runs. A non-empty databaseA restricts the list to runs whose A side had
// that name.
func (s *Store) Recent(ctx context.Context, databaseA string, limit, offset int) ([]Run, error) {
	if offset < 0 {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "history: negative offset %d", offset)
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	b := database.Select(Table, s.db.Dialect()).
		Columns(columns...).
		OrderBy("created_at", database.Desc).
		Limit(limit)
	if databaseA != "" {
		b.Where("database_a", "=", databaseA)
	}
	if offset > 0 {
		b.Offset(offset)
	}
	query, args, err := b.Build()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	records, err := database.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	runs := make([]Run, 0, len(records))
	for _, rec := range records {
		run, err := decodeRun(rec)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func decodeRun(rec map[string]any) (Run, error) {
	var ints [6]int64
	for i, col := range []string{
		"equal_count", "children_differ_count", "left_only_count",
		"right_only_count", "different_count", "created_at",
	} {
		n, err := integer(rec[col])
		if err != nil {
			return Run{}, errs.Wrap(errs.ErrKindQueryFailed, "history: column "+col, err)
		}
		ints[i] = n
	}

	return Run{
		ID:        database.Text(rec["id"]),
		DatabaseA: database.Text(rec["database_a"]),
		DatabaseB: database.Text(rec["database_b"]),
		Counts: map[compare.Mode]int{
			compare.ModeEqual:          int(ints[0]),
			compare.ModeChildrenDiffer: int(ints[1]),
			compare.ModeLeftOnly:       int(ints[2]),
			compare.ModeRightOnly:      int(ints[3]),
			compare.ModeDifferent:      int(ints[4]),
		},
		DDL:       database.Text(rec["ddl"]),
		CreatedAt: time.UnixMilli(ints[5]).UTC(),
	}, nil
}

// integer accepts the integer representations drivers return for INTEGER
// and BIGINT columns.
func integer(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case nil:
		return 0, nil
	default:
		return strconv.ParseInt(database.Text(v), 10, 64)
	}
}
