// Package memory keeps archive snapshots in process memory.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wepublish/wepublish-api/pkg/publishing/archive"
)

type blob struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Store is an archive.BlobStore holding objects in a map.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

var _ archive.BlobStore = (*Store)(nil)

func New() *Store {
	return &Store{blobs: map[string]blob{}}
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	s.mu.Lock()
	s.blobs[key] = blob{data: data, contentType: contentType, updatedAt: time.Now()}
	s.mu.Unlock()
	return nil
}

// Get returns a reader over the stored bytes. Stored slices are never
// mutated, so readers stay valid after a later Put.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	b, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, archive.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return archive.ErrObjectNotFound
	}
	delete(s.blobs, key)
	return nil
}

func (s *Store) Stat(ctx context.Context, key string) (*archive.ObjectMeta, error) {
	s.mu.RLock()
	b, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, archive.ErrObjectNotFound
	}
	return &archive.ObjectMeta{
		Key:         key,
		Size:        int64(len(b.data)),
		ContentType: b.contentType,
		UpdatedAt:   b.updatedAt,
	}, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.blobs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
