// Package dedup tracks source ids a producer has already ingested.
package dedup

import (
	"context"
	"sync"
)

// Store persists a processed set.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// ProcessedSet is an append-only set of source ids. Insertion order is kept
// so the persisted file reads chronologically.
type ProcessedSet struct {
	store Store

	mu    sync.Mutex
	ids   []string
	index map[string]struct{}
	dirty bool
}

// Open loads a processed set from its store.
func Open(ctx context.Context, store Store) (*ProcessedSet, error) {
	ids, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &ProcessedSet{store: store, index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, ok := s.index[id]; ok || id == "" {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s, nil
}

// Has reports whether id has been processed.
func (s *ProcessedSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[id]
	return ok
}

// Add marks id as processed. Returns false if it already was.
func (s *ProcessedSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok || id == "" {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	s.dirty = true
	return true
}

// Len returns the number of processed ids.
func (s *ProcessedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}

// Flush rewrites the persisted set when it changed since the last flush.
func (s *ProcessedSet) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	if err := s.store.Save(ctx, ids); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	IDs   []string
	Saves int
}

func (m *MemoryStore) Load(context.Context) ([]string, error) {
	return append([]string(nil), m.IDs...), nil
}

func (m *MemoryStore) Save(_ context.Context, ids []string) error {
	m.IDs = append([]string(nil), ids...)
	m.Saves++
	return nil
}
