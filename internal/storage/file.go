package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"duit/internal/core"
)

// FileStore persists the transaction list as one JSON document — the
// server-side analog of a named local-storage slot. Every mutation rewrites
// the whole document (no diffing) before the call returns; the write goes
// through a temp file and rename so a crash can never leave a torn slot.
type FileStore struct {
	mu      sync.Mutex
	path    string
	txs     []core.Transaction
	version uint64
	now     func() time.Time
}

// slotTransaction is the persisted shape. Date fields travel as RFC3339
// strings and are reconstructed into time values on load.
type slotTransaction struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Amount    int64  `json:"amount"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	CreatedAt string `json:"createdAt"`
}

// NewFileStore loads the slot at path, seeding it with the placeholder
// dataset when the slot is absent or holds an empty list.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	s := &FileStore{path: path, now: time.Now}
	if err := s.load(); err != nil {
		return nil, err
	}
	if len(s.txs) == 0 {
		s.txs = SeedTransactions(s.now())
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("persist seed data: %w", err)
		}
		slog.Info("Seeded transaction store", "path", path, "count", len(s.txs))
	}
	return s, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store slot: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	var slot []slotTransaction
	if err := json.Unmarshal(raw, &slot); err != nil {
		return fmt.Errorf("decode store slot %s: %w", s.path, err)
	}
	txs := make([]core.Transaction, 0, len(slot))
	for _, st := range slot {
		tx, err := st.toTransaction()
		if err != nil {
			return fmt.Errorf("decode store slot %s: %w", s.path, err)
		}
		txs = append(txs, tx)
	}
	s.txs = txs
	return nil
}

func (st slotTransaction) toTransaction() (core.Transaction, error) {
	date, err := time.Parse(time.RFC3339, st.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: parse date: %w", st.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339, st.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: parse createdAt: %w", st.ID, err)
	}
	return core.Transaction{
		ID:        st.ID,
		Title:     st.Title,
		Amount:    core.Money{Rupiah: st.Amount},
		Category:  st.Category,
		Type:      core.Type(st.Type),
		Date:      date,
		CreatedAt: createdAt,
	}, nil
}

func toSlot(tx core.Transaction) slotTransaction {
	return slotTransaction{
		ID:        tx.ID,
		Title:     tx.Title,
		Amount:    tx.Amount.Rupiah,
		Category:  tx.Category,
		Type:      string(tx.Type),
		Date:      tx.Date.Format(time.RFC3339),
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
	}
}

// persistLocked writes the full list. Callers hold s.mu.
func (s *FileStore) persistLocked() error {
	slot := make([]slotTransaction, len(s.txs))
	for i, tx := range s.txs {
		slot[i] = toSlot(tx)
	}
	raw, err := json.MarshalIndent(slot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store slot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write store slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store slot: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *FileStore) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

func (s *FileStore) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	tx.ID = NewID(now)
	tx.CreatedAt = now
	s.txs = append([]core.Transaction{tx}, s.txs...)
	if err := s.persistLocked(); err != nil {
		// Roll back: the contract is "persisted before returning".
		s.txs = s.txs[1:]
		return core.Transaction{}, err
	}
	s.version++
	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"title", tx.Title,
		"amount", tx.Amount.Rupiah,
		"type", string(tx.Type))
	return tx, nil
}

func (s *FileStore) Update(ctx context.Context, id string, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID != id {
			continue
		}
		prev := s.txs[i]
		tx.ID = id
		tx.CreatedAt = prev.CreatedAt
		s.txs[i] = tx
		if err := s.persistLocked(); err != nil {
			s.txs[i] = prev
			return err
		}
		s.version++
		slog.InfoContext(ctx, "Transaction updated", "id", id, "title", tx.Title)
		return nil
	}
	return ErrNotFound
}

func (s *FileStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID != id {
			continue
		}
		prev := s.txs[i]
		s.txs = append(s.txs[:i], s.txs[i+1:]...)
		if err := s.persistLocked(); err != nil {
			s.txs = append(s.txs[:i], append([]core.Transaction{prev}, s.txs[i:]...)...)
			return err
		}
		s.version++
		slog.InfoContext(ctx, "Transaction removed", "id", id)
		return nil
	}
	return ErrNotFound
}

func (s *FileStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *FileStore) Close() error { return nil }
