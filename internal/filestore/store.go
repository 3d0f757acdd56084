// Package filestore defines the object storage interface snapshot documents
// are kept in.
//
// Callers depend only on this package; internal/filestore/minio provides the
// implementation and internal/filestore/filestoretest an in-memory one.
package filestore

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	// Key is the full object path within the bucket.
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading.
type Object interface {
	io.ReadCloser

	Info() *ObjectInfo
}

// ListOptions controls ListObjects.
type ListOptions struct {
	// Prefix restricts results to keys starting with it.
	Prefix string

	// Limit caps the number of results. 0 means no limit.
	Limit int
}

// Store is implemented by every storage provider.
type Store interface {
	// Ping verifies the bucket is reachable.
	Ping(ctx context.Context) error

	Close() error

	// ListObjects returns the objects in bucket that match opts, sorted by key.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// GetObject opens the object at key. The caller MUST close it.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// StatObject returns metadata without downloading content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// PutObject uploads size bytes from r to key, replacing any existing object.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*ObjectInfo, error)
}
