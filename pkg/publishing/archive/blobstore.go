package archive

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by blob stores for keys that do not exist.
var ErrObjectNotFound = errors.New("object not found")

// BlobStore is a flat key/value store for snapshot documents. Keys use "/"
// as separator regardless of the backend.
type BlobStore interface {
	// Put stores r under key, replacing any previous object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get opens the object stored under key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	Stat(ctx context.Context, key string) (*ObjectMeta, error)

	// List returns the keys starting with prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ObjectMeta describes a stored object
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}
