// Package config loads the schemadiff YAML configuration file.
//
// Every field has a default, so an empty or missing file yields a usable
// configuration. Secrets are usually supplied through SCHEMADIFF_*
// environment variables, which override values read from the file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/filestore"
	"github.com/koustreak/schemadiff/internal/logger"
	"go.yaml.in/yaml/v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCHEMADIFF_"

// Config is the whole schemadiff configuration file.
type Config struct {
	Logger  logger.Config    `yaml:"logger"`
	A       Source           `yaml:"a"`
	B       Source           `yaml:"b"`
	Storage filestore.Config `yaml:"storage"`
	History database.Config  `yaml:"history"`
	Server  ServerConfig     `yaml:"server"`
}

// Source says where one side of a comparison is read from. At most one of
// DSN, File and Object is set.
type Source struct {
	// DSN of a live MySQL server, e.g. "user:pass@tcp(localhost:3306)/shop".
	DSN string `yaml:"dsn"`
	// Database overrides the schema named in DSN.
	Database string `yaml:"database"`
	// File is a snapshot document on disk.
	File string `yaml:"file"`
	// Object is a snapshot key in the configured storage bucket.
	Object string `yaml:"object"`
}

// SourceKind tells which field of a Source is in use.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceMySQL
	SourceFile
	SourceObject
)

func (s Source) Kind() SourceKind {
	switch {
	case s.DSN != "":
		return SourceMySQL
	case s.File != "":
		return SourceFile
	case s.Object != "":
		return SourceObject
	default:
		return SourceNone
	}
}

// Validate checks that at most one location is set.
func (s Source) Validate(side string) error {
	set := 0
	for _, v := range []string{s.DSN, s.File, s.Object} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return errs.Newf(errs.ErrKindInvalidInput, "%s: only one of dsn, file and object may be set", side)
	}
	if s.Database != "" && s.DSN == "" {
		return errs.Newf(errs.ErrKindInvalidInput, "%s: database requires dsn", side)
	}
	return nil
}

// ServerConfig configures the HTTP API started by "schemadiff serve".
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxBodyBytes limits request bodies of the compare and textdiff endpoints.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	lc := logger.DefaultConfig()
	lc.Output = nil
	return &Config{
		Logger:  *lc,
		Storage: *filestore.DefaultConfig("", "", ""),
		History: database.Config{MaxConns: 2, MinConns: 0},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    8 << 20,
		},
	}
}

// Load reads path on top of Default and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errs.Wrap(errs.ErrKindNotFound, "config: read "+path, err)
			}
			return nil, errs.Wrap(errs.ErrKindPermissionDenied, "config: read "+path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "config: parse "+path, err)
		}
	}

	cfg.applyEnv(lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"A_DSN":              &c.A.DSN,
		"A_DATABASE":         &c.A.Database,
		"B_DSN":              &c.B.DSN,
		"B_DATABASE":         &c.B.Database,
		"HISTORY_DSN":        &c.History.DSN,
		"STORAGE_ENDPOINT":   &c.Storage.Endpoint,
		"STORAGE_ACCESS_KEY": &c.Storage.AccessKey,
		"STORAGE_SECRET_KEY": &c.Storage.SecretKey,
		"LOG_LEVEL":          &c.Logger.Level,
		"SERVER_ADDR":        &c.Server.Addr,
	}
	for name, dst := range overrides {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	// A DSN from the environment replaces file or object sources of that side.
	if v, ok := lookup(EnvPrefix + "A_DSN"); ok && v != "" {
		c.A.File, c.A.Object = "", ""
	}
	if v, ok := lookup(EnvPrefix + "B_DSN"); ok && v != "" {
		c.B.File, c.B.Object = "", ""
	}
	if c.History.DSN != "" && c.History.Driver == "" {
		c.History.Driver = historyDriver(c.History.DSN)
	}
}

// historyDriver guesses the driver of a history DSN without an explicit one.
func historyDriver(dsn string) database.Driver {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return database.DriverPostgres
	}
	return database.DriverSQLite
}

// HistoryEnabled reports whether comparisons should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.History.DSN != ""
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Logger.Format) {
	case "json", "console":
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "logger: unknown format %q", c.Logger.Format)
	}
	if err := c.A.Validate("a"); err != nil {
		return err
	}
	if err := c.B.Validate("b"); err != nil {
		return err
	}
	if (c.A.Kind() == SourceObject || c.B.Kind() == SourceObject) && !c.Storage.Enabled() {
		return errs.New(errs.ErrKindInvalidInput, "object sources require storage.endpoint")
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.HistoryEnabled() {
		switch c.History.Driver {
		case database.DriverPostgres, database.DriverSQLite:
		default:
			return errs.Newf(errs.ErrKindInvalidInput, "history: unsupported driver %q", c.History.Driver)
		}
		if err := c.History.Validate(); err != nil {
			return err
		}
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrKindInvalidInput, "server: addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errs.New(errs.ErrKindInvalidInput, "server: max_body_bytes must be positive")
	}
	return nil
}
