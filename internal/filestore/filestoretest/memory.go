// Package filestoretest provides an in-memory filestore.Store for tests.
package filestoretest

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/filestore"
)

type entry struct {
	data []byte
	info filestore.ObjectInfo
}

// Store keeps objects in memory. Buckets spring into existence on first Put.
type Store struct {
	mu      sync.Mutex
	buckets map[string]map[string]entry
	now     func() time.Time
}

var _ filestore.Store = (*Store)(nil)

func New() *Store {
	return &Store{buckets: make(map[string]map[string]entry), now: time.Now}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

func (s *Store) ListObjects(_ context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	objs, ok := s.buckets[bucket]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q does not exist", bucket)
	}
	var out []filestore.ObjectInfo
	for key, e := range objs {
		if strings.HasPrefix(key, opts.Prefix) {
			out = append(out, e.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) GetObject(_ context.Context, bucket, key string) (filestore.Object, error) {
	e, err := s.lookup(bucket, key)
	if err != nil {
		return nil, err
	}
	info := e.info
	return &object{ReadCloser: io.NopCloser(bytes.NewReader(e.data)), info: &info}, nil
}

func (s *Store) StatObject(_ context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	e, err := s.lookup(bucket, key)
	if err != nil {
		return nil, err
	}
	info := e.info
	return &info, nil
}

func (s *Store) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, contentType string) (*filestore.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "read upload", err)
	}
	sum := md5.Sum(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string]entry)
	}
	info := filestore.ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: s.now(),
	}
	s.buckets[bucket][key] = entry{data: data, info: info}
	return &info, nil
}

func (s *Store) lookup(bucket, key string) (entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.buckets[bucket][key]
	if !ok {
		return entry{}, errs.Newf(errs.ErrKindNotFound, "object %s/%s does not exist", bucket, key)
	}
	return e, nil
}

type object struct {
	io.ReadCloser
	info *filestore.ObjectInfo
}

func (o *object) Info() *filestore.ObjectInfo { return o.info }
