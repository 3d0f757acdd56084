package snapshot

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/filestore"
	"github.com/koustreak/schemadiff/internal/schema"
	"go.yaml.in/yaml/v3"
)

// ContentType is the media type used when uploading documents.
const ContentType = "application/yaml"

var now = time.Now

// Encode writes s as a YAML document.
func Encode(w io.Writer, s *schema.Snapshot) error {
	if s == nil {
		return errs.New(errs.ErrKindInvalidInput, "snapshot: nil snapshot")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromSnapshot(s, now().UTC().Truncate(time.Second))); err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "snapshot: encode", err)
	}
	if err := enc.Close(); err != nil {
		return errs.Wrap(errs.ErrKindWriteFailed, "snapshot: encode", err)
	}
	return nil
}

// Decode reads one YAML document. Unknown fields are rejected.
func Decode(r io.Reader) (*schema.Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errs.New(errs.ErrKindInvalidInput, "snapshot: empty document")
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "snapshot: decode", err)
	}
	return doc.toSnapshot()
}

// LoadFile decodes the document stored at path.
func LoadFile(path string) (*schema.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "snapshot: open "+path, err)
		}
		return nil, errs.Wrap(errs.ErrKindPermissionDenied, "snapshot: open "+path, err)
	}
	defer f.Close()
	return Decode(f)
}

// SaveFile writes s to path, creating parent directories.
func SaveFile(path string, s *schema.Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.ErrKindPermissionDenied, "snapshot: mkdir", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errs.Wrap(errs.ErrKindPermissionDenied, "snapshot: write "+path, err)
	}
	return nil
}

// Load downloads and decodes the document at key.
func Load(ctx context.Context, store filestore.Store, bucket, key string) (*schema.Snapshot, error) {
	obj, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return Decode(obj)
}

// Save encodes s and uploads it to key.
func Save(ctx context.Context, store filestore.Store, bucket, key string, s *schema.Snapshot) (*filestore.ObjectInfo, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return nil, err
	}
	return store.PutObject(ctx, bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), ContentType)
}

// List returns the documents stored under prefix, sorted by key.
func List(ctx context.Context, store filestore.Store, bucket, prefix string) ([]filestore.ObjectInfo, error) {
	return store.ListObjects(ctx, bucket, filestore.ListOptions{Prefix: prefix})
}
