package hilo

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a Store kept in process memory. It serves tests and
// single-process tools; IDs are only unique among registries sharing the
// same MemoryStore value. The zero value is an empty store.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]*memoryRow
}

type memoryRow struct {
	counter int64
	skip    int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*memoryRow)}
}

// Reserve implements Store.
func (s *MemoryStore) Reserve(ctx context.Context, entity string) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[entity]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrNoCounter, entity)
	}
	if err := ValidateSkip(entity, row.skip); err != nil {
		return 0, 0, err
	}
	counter := row.counter
	row.counter++
	return counter, row.skip, nil
}

// Seed implements Seeder.
func (s *MemoryStore) Seed(ctx context.Context, entity string, counter, skip int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := ValidateSkip(entity, skip); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[entity]; ok {
		return false, nil
	}
	s.set(entity, counter, skip)
	return true, nil
}

// Set overwrites the counter row of entity without validation.
func (s *MemoryStore) Set(entity string, counter, skip int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(entity, counter, skip)
}

// set must be called with mu held.
func (s *MemoryStore) set(entity string, counter, skip int64) {
	if s.rows == nil {
		s.rows = make(map[string]*memoryRow)
	}
	s.rows[entity] = &memoryRow{counter: counter, skip: skip}
}

// Counter returns the stored counter and block size of entity.
func (s *MemoryStore) Counter(entity string) (counter, skip int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[entity]
	if !ok {
		return 0, 0, false
	}
	return row.counter, row.skip, true
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Seeder = (*MemoryStore)(nil)
)
