package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. Useful for tests and
// for serving without persistence.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Record)}
}

func (s *MemoryStore) Get(ctx context.Context, name string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	out := *rec
	out.Data = append([]byte(nil), rec.Data...)
	return &out, nil
}

func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[name] = &Record{
		Name:     name,
		Data:     append([]byte(nil), data...),
		Modified: time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	delete(s.docs, name)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
