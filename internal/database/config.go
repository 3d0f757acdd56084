package database

import (
	"time"

	"github.com/koustreak/schemadiff/internal/errs"
)

// Driver identifies the database engine.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// Config holds all settings needed to connect to and pool a database.
type Config struct {
	// Driver is the database engine (e.g. DriverMySQL).
	Driver Driver `yaml:"driver"`

	// DSN is the full data source name / connection string.
	// Example: "user:pass@tcp(localhost:3306)/shop"
	DSN string `yaml:"dsn"`

	// Pool tuning
	MaxConns        int32         `yaml:"max_conns"`          // maximum number of connections in the pool
	MinConns        int32         `yaml:"min_conns"`          // minimum number of idle connections kept alive
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`  // maximum time a connection may be reused
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"` // maximum time a connection may sit idle

	// Timeouts
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // time limit for establishing a new connection
	QueryTimeout   time.Duration `yaml:"query_timeout"`   // default per-query deadline (applied by callers)
}

// DefaultConfig returns pool settings for a short-lived schema reading
// session against the given driver and DSN.
func DefaultConfig(driver Driver, dsn string) *Config {
	return &Config{
		Driver:          driver,
		DSN:             dsn,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}

// Validate checks that the config names a known driver and a DSN.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unsupported database driver %q", c.Driver)
	}
	if c.DSN == "" {
		return errs.Newf(errs.ErrKindInvalidInput, "%s: dsn is required", c.Driver)
	}
	if c.MaxConns < 0 || c.MinConns < 0 || c.MinConns > c.MaxConns {
		return errs.Newf(errs.ErrKindInvalidInput, "%s: invalid pool size min=%d max=%d", c.Driver, c.MinConns, c.MaxConns)
	}
	return nil
}
