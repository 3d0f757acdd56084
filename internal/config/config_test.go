package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemadiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, SourceNone, cfg.A.Kind())
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.HistoryEnabled())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
logger:
  level: debug
  format: console
a:
  dsn: "root:pw@tcp(localhost:3306)/shop"
b:
  object: snapshots/shop.yaml
storage:
  provider: minio
  endpoint: localhost:9000
  bucket: schemas
history:
  driver: sqlite
  dsn: sqlite://history.db
server:
  addr: ":9090"
  read_timeout: 5s
`)
	cfg, err := load(path, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, SourceMySQL, cfg.A.Kind())
	assert.Equal(t, SourceObject, cfg.B.Kind())
	assert.Equal(t, "schemas", cfg.Storage.Bucket)
	assert.Equal(t, "snapshots/", cfg.Storage.Prefix, "unset fields keep defaults")
	assert.True(t, cfg.HistoryEnabled())
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "a:\n  file: a.yaml\n")
	cfg, err := load(path, env(map[string]string{
		"SCHEMADIFF_A_DSN":       "u:p@tcp(db:3306)/shop",
		"SCHEMADIFF_HISTORY_DSN": "postgres://u:p@db/history",
		"SCHEMADIFF_LOG_LEVEL":   "warn",
	}))
	require.NoError(t, err)

	assert.Equal(t, SourceMySQL, cfg.A.Kind())
	assert.Empty(t, cfg.A.File)
	assert.Equal(t, database.DriverPostgres, cfg.History.Driver)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind errs.ErrKind
	}{
		{"bad yaml", "logger: [", errs.ErrKindInvalidInput},
		{"two sources", "a:\n  dsn: x\n  file: y\n", errs.ErrKindInvalidInput},
		{"database without dsn", "b:\n  file: y\n  database: shop\n", errs.ErrKindInvalidInput},
		{"object without storage", "a:\n  object: k\n", errs.ErrKindInvalidInput},
		{"bad log format", "logger:\n  format: xml\n", errs.ErrKindInvalidInput},
		{"mysql history", "history:\n  driver: mysql\n  dsn: x\n", errs.ErrKindInvalidInput},
		{"empty addr", "server:\n  addr: \"\"\n", errs.ErrKindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeFile(t, tt.body), noEnv)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}

	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), noEnv)
	assert.True(t, errs.IsNotFound(err))
}

func TestHistoryDriver(t *testing.T) {
	assert.Equal(t, database.DriverPostgres, historyDriver("postgresql://x"))
	assert.Equal(t, database.DriverSQLite, historyDriver("/var/lib/schemadiff/history.db"))
}
