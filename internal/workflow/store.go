package workflow

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound means the store holds no record for the workflow id.
var ErrNotFound = errors.New("workflow not found")

// Store keeps workflow records keyed by ledger-assigned id. Update must
// apply fn atomically with respect to other updates of the same id.
type Store interface {
	Get(ctx context.Context, workflowID int64) (Record, error)
	Put(ctx context.Context, rec Record) error
	Update(ctx context.Context, workflowID int64, fn func(*Record) error) error
}

// MemoryStore is the in-process store. Records live only as long as the
// process; durability comes from the ledger, not from here.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]Record
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]Record)}
}

func (s *MemoryStore) Get(_ context.Context, workflowID int64) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[workflowID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.WorkflowID] = rec
	return nil
}

func (s *MemoryStore) Update(_ context.Context, workflowID int64, fn func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[workflowID]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&rec); err != nil {
		return err
	}
	s.records[workflowID] = rec
	return nil
}
