// Package memdocstore is the in-process docstore.Store, for tests and
// database-less dev runs.
package memdocstore

import (
	"context"
	"sort"
	"sync"

	"github.com/sikad-ph/otpkit/docstore"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any // collection -> key -> fields
}

func New() *Store {
	return &Store{data: make(map[string]map[string]map[string]any)}
}

func (s *Store) Get(ctx context.Context, collection, key string) (docstore.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.data[collection][key]
	if !ok {
		return docstore.Doc{}, docstore.ErrNotFound
	}
	return docstore.Doc{Key: key, Fields: clone(fields)}, nil
}

func (s *Store) Set(ctx context.Context, collection, key string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]map[string]any)
	}
	s.data[collection][key] = clone(fields)
	return nil
}

func (s *Store) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data[collection][key]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[collection], key)
	return nil
}

func (s *Store) Query(ctx context.Context, collection, field, equals string, limit int) ([]docstore.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data[collection]))
	for key := range s.data[collection] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []docstore.Doc
	for _, key := range keys {
		if len(out) >= limit {
			break
		}
		fields := s.data[collection][key]
		if v, ok := fields[field].(string); ok && v == equals {
			out = append(out, docstore.Doc{Key: key, Fields: clone(fields)})
		}
	}
	return out, nil
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
