package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/database/databasetest"
	"github.com/koustreak/schemadiff/internal/database/sqlite"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(dbA string) *compare.Result {
	users := schema.NewTableInfo("users", "CREATE TABLE users (id int)", "InnoDB", "utf8mb4", "utf8mb4_general_ci")
	orders := schema.NewTableInfo("orders", "CREATE TABLE orders (id int)", "InnoDB", "utf8mb4", "utf8mb4_general_ci")
	v := schema.NewViewInfo("v", "CREATE VIEW v AS select 1")
	return &compare.Result{
		DatabaseA: dbA,
		DatabaseB: "shop_staging",
		Diffs: []compare.Diff{
			compare.NewTableDiff(compare.ModeEqual, &users, &users),
			compare.NewTableDiff(compare.ModeLeftOnly, &orders, nil),
			compare.NewViewDiff(compare.ModeRightOnly, nil, &v),
		},
	}
}

func fixedStore(db database.DB, now time.Time) *Store {
	s := New(db, nil)
	s.now = func() time.Time { return now }
	n := 0
	s.newID = func() string {
		n++
		return "run-" + strings.Repeat("x", n)
	}
	return s
}

func TestStore_RecordBuildsInsert(t *testing.T) {
	db := databasetest.New(database.DialectPostgres)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := fixedStore(db, now)

	run, err := s.Record(context.Background(), sampleResult("shop"), "DROP VIEW `v`;")
	require.NoError(t, err)
	assert.Equal(t, "run-x", run.ID)
	assert.Equal(t, 2, run.Changes())
	assert.Equal(t, now, run.CreatedAt)

	execs := db.Execs()
	require.Len(t, execs, 1)
	assert.True(t, strings.HasPrefix(execs[0].SQL, `INSERT INTO "schemadiff_runs" ("id", "database_a"`))
	assert.Contains(t, execs[0].SQL, "$10")
	assert.Equal(t, []any{
		"run-x", "shop", "shop_staging", 1, 0, 1, 1, 0, "DROP VIEW `v`;", now.UnixMilli(),
	}, execs[0].Args)
}

func TestStore_RecordNilResult(t *testing.T) {
	s := New(databasetest.New(database.DialectPostgres), nil)
	_, err := s.Record(context.Background(), nil, "")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestStore_RecordExecError(t *testing.T) {
	db := databasetest.New(database.DialectPostgres)
	db.FailExec(errs.New(errs.ErrKindPermissionDenied, "read only"))

	_, err := New(db, nil).Record(context.Background(), sampleResult("shop"), "")
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))
}

func TestStore_RecentQuery(t *testing.T) {
	db := databasetest.New(database.DialectPostgres)
	db.On(`FROM "schemadiff_runs"`, databasetest.Result{
		Columns: columns,
		Rows: [][]any{
			{"r1", "shop", "shop_staging", int64(3), int64(1), int64(0), int64(2), int64(1), "ALTER ...", int64(1767225600000)},
		},
	})

	runs, err := New(db, nil).Recent(context.Background(), "shop", 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].ID)
	assert.Equal(t, 3, runs[0].Counts[compare.ModeEqual])
	assert.Equal(t, 4, runs[0].Changes())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), runs[0].CreatedAt)

	q := db.Queries()
	require.Len(t, q, 1)
	assert.Contains(t, q[0].SQL, `WHERE "database_a" = $1 ORDER BY "created_at" DESC LIMIT $2`)
	assert.Equal(t, []any{"shop", DefaultLimit}, q[0].Args)
}

func TestStore_RecentLimitIsCapped(t *testing.T) {
	db := databasetest.New(database.DialectSQLite)
	db.On("schemadiff_runs", databasetest.Result{Columns: columns})

	runs, err := New(db, nil).Recent(context.Background(), "", 10_000, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	q := db.Queries()
	require.Len(t, q, 1)
	assert.NotContains(t, q[0].SQL, "WHERE")
	assert.Equal(t, []any{MaxLimit}, q[0].Args)
}

func TestStore_RecentOffset(t *testing.T) {
	db := databasetest.New(database.DialectPostgres)
	db.On(`FROM "schemadiff_runs"`, databasetest.Result{Columns: columns})

	_, err := New(db, nil).Recent(context.Background(), "shop", 10, 20)
	require.NoError(t, err)

	q := db.Queries()
	require.Len(t, q, 1)
	assert.Contains(t, q[0].SQL, `ORDER BY "created_at" DESC LIMIT $2 OFFSET $3`)
	assert.Equal(t, []any{"shop", 10, 20}, q[0].Args)

	_, err = New(db, nil).Recent(context.Background(), "", 10, -1)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Len(t, db.Queries(), 1)
}

func TestStore_RecentBadColumn(t *testing.T) {
	db := databasetest.New(database.DialectSQLite)
	db.On("schemadiff_runs", databasetest.Result{
		Columns: columns,
		Rows:    [][]any{{"r1", "a", "b", "three", 0, 0, 0, 0, "", 0}},
	})

	_, err := New(db, nil).Recent(context.Background(), "", 5, 0)
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "history.db")
	db, err := sqlite.New(ctx, database.DefaultConfig(database.DriverSQLite, dsn))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	s := New(db, nil)
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx), "migrate is idempotent")

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"shop", "billing", "shop"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := s.Record(ctx, sampleResult(name), "-- "+name)
		require.NoError(t, err)
	}

	all, err := s.Recent(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(2*time.Minute), all[0].CreatedAt)
	assert.Equal(t, "billing", all[1].DatabaseA)

	shop, err := s.Recent(ctx, "shop", 1, 0)
	require.NoError(t, err)
	require.Len(t, shop, 1)
	assert.Equal(t, "shop", shop[0].DatabaseA)
	assert.Equal(t, "-- shop", shop[0].DDL)
	assert.Equal(t, 1, shop[0].Counts[compare.ModeLeftOnly])
	assert.Len(t, shop[0].ID, 36)

	older, err := s.Recent(ctx, "", 2, 1)
	require.NoError(t, err)
	require.Len(t, older, 2)
	assert.Equal(t, "billing", older[0].DatabaseA)
	assert.Equal(t, base, older[1].CreatedAt)

	none, err := s.Recent(ctx, "", 0, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := database.DefaultConfig(database.DriverSQLite, "sqlite://"+filepath.Join(t.TempDir(), "h.db"))

	s, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	runs, err := s.Recent(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = Open(ctx, database.DefaultConfig(database.DriverMySQL, "x"), nil)
	assert.True(t, errs.IsInvalidInput(err))
}
