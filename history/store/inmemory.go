package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	colloquyerrors "github.com/sweetpotato0/colloquy/errors"
	"github.com/sweetpotato0/colloquy/history"
)

// InMemoryStore keeps history records in process memory. Useful for tests
// and single-session tools that do not need durability.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*history.Record
}

// NewInMemoryStore creates an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*history.Record),
	}
}

// Save stores a copy of the record.
func (s *InMemoryStore) Save(ctx context.Context, record *history.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("history record must have an ID: %w", colloquyerrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := record.Clone()
	now := time.Now()
	if existing, ok := s.records[record.ID]; ok {
		cloned.CreatedAt = existing.CreatedAt
	} else if cloned.CreatedAt.IsZero() {
		cloned.CreatedAt = now
	}
	cloned.UpdatedAt = now
	s.records[record.ID] = cloned
	return nil
}

// Load returns a copy of the record with the given ID.
func (s *InMemoryStore) Load(ctx context.Context, id string) (*history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("history %s: %w", id, colloquyerrors.ErrNotFound)
	}
	return record.Clone(), nil
}

// Delete removes the record with the given ID.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// List returns all stored record IDs.
func (s *InMemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
