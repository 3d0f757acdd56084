package history

import (
	"context"

	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/database/postgres"
	"github.com/koustreak/schemadiff/internal/database/sqlite"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/logger"
)

// Open connects to the history database named by cfg, migrates it and
// returns a Store that owns the connection.
func Open(ctx context.Context, cfg *database.Config, log *logger.Logger) (*Store, error) {
	var (
		db  database.DB
		err error
	)
	switch cfg.Driver {
	case database.DriverPostgres:
		db, err = postgres.New(ctx, cfg)
	case database.DriverSQLite:
		db, err = sqlite.New(ctx, cfg)
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "history: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	s := New(db, log)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Ping checks the history database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the database connection.
func (s *Store) Close() {
	s.db.Close()
}
