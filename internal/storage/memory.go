package storage

import (
	"context"
	"sync"
	"time"

	"duit/internal/core"
)

// MemoryStore keeps the transaction list in process memory only. It backs
// tests and the dev server; "persistence" is the in-memory slice itself.
type MemoryStore struct {
	mu      sync.Mutex
	txs     []core.Transaction
	version uint64
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// NewSeededMemoryStore starts from the fixed placeholder dataset, the same
// way a persistent backend seeds itself on first run.
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.txs = SeedTransactions(s.now())
	return s
}

// SetClock overrides the timestamp source. Test helper.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

func (s *MemoryStore) Add(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	tx.ID = NewID(now)
	tx.CreatedAt = now
	s.txs = append([]core.Transaction{tx}, s.txs...)
	s.version++
	return tx, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			tx.ID = id
			tx.CreatedAt = s.txs[i].CreatedAt
			s.txs[i] = tx
			s.version++
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			s.version++
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *MemoryStore) Close() error { return nil }
