// Package source opens one side of a comparison: a live MySQL schema, a
// snapshot file or a snapshot object in storage.
package source

import (
	"context"

	"github.com/koustreak/schemadiff/internal/config"
	"github.com/koustreak/schemadiff/internal/database"
	"github.com/koustreak/schemadiff/internal/database/mysql"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/filestore"
	"github.com/koustreak/schemadiff/internal/filestore/minio"
	"github.com/koustreak/schemadiff/internal/logger"
	"github.com/koustreak/schemadiff/internal/schema"
	"github.com/koustreak/schemadiff/internal/snapshot"
)

// Loader reads snapshots from the configured sources.
type Loader struct {
	store  filestore.Store
	bucket string
	log    *logger.Logger
	dial   func(ctx context.Context, dsn string) (database.DB, error)
}

// NewLoader returns a Loader. store may be nil when no storage is configured;
// object sources then fail.
func NewLoader(store filestore.Store, storage *filestore.Config, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	l := &Loader{store: store, log: log, dial: dialMySQL}
	if storage != nil {
		l.bucket = storage.Bucket
	}
	return l
}

func dialMySQL(ctx context.Context, dsn string) (database.DB, error) {
	db, err := mysql.New(ctx, database.DefaultConfig(database.DriverMySQL, dsn))
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Load reads the snapshot src points at.
func (l *Loader) Load(ctx context.Context, src config.Source) (*schema.Snapshot, error) {
	switch src.Kind() {
	case config.SourceMySQL:
		db, err := l.dial(ctx, src.DSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return mysql.NewIntrospector(db, l.log).Snapshot(ctx, src.Database)
	case config.SourceFile:
		return snapshot.LoadFile(src.File)
	case config.SourceObject:
		if l.store == nil {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "object %q requested but storage is not configured", src.Object)
		}
		return snapshot.Load(ctx, l.store, l.bucket, src.Object)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "no source given: set a dsn, file or object")
	}
}

// OpenStorage connects to the configured object store, or returns nil when
// storage is not configured.
func OpenStorage(ctx context.Context, cfg *filestore.Config) (filestore.Store, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	store, err := minio.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}
