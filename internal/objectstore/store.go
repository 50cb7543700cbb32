// Package objectstore abstracts the artifact bucket: uploads, downloads,
// and prefix listing for index assembly.
package objectstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get for keys that do not exist.
var ErrNotFound = errors.New("object not found")

// Store is the object storage backend artifacts and metadata are pushed to
// and the index is assembled from.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// NullStore discards uploads and lists nothing.
type NullStore struct{}

func (NullStore) Put(context.Context, string, []byte, string) error { return nil }
func (NullStore) Get(context.Context, string) ([]byte, error)       { return nil, ErrNotFound }
func (NullStore) List(context.Context, string) ([]string, error)    { return nil, nil }

// MemStore is an in-memory Store used in tests.
type MemStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (m *MemStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = append([]byte(nil), data...)
	m.Types[key] = contentType
	return nil
}

func (m *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.Objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
