package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreBehavesLikeAStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if txs, _ := s.List(ctx); len(txs) != 0 {
		t.Fatal("unseeded memory store must start empty")
	}

	a, err := s.Add(ctx, draft("pertama", 1000))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	b, _ := s.Add(ctx, draft("kedua", 2000))

	txs, _ := s.List(ctx)
	if len(txs) != 2 || txs[0].ID != b.ID || txs[1].ID != a.ID {
		t.Fatalf("expected most-recently-added first, got %+v", txs)
	}

	if err := s.Remove(ctx, a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Remove: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreListReturnsSnapshot(t *testing.T) {
	s := NewSeededMemoryStore()
	ctx := context.Background()

	txs, _ := s.List(ctx)
	if len(txs) == 0 {
		t.Fatal("seeded store must not be empty")
	}
	txs[0].Title = "mutated"

	fresh, _ := s.List(ctx)
	if fresh[0].Title == "mutated" {
		t.Fatal("List must return a copy, not the backing slice")
	}
}

func TestNewIDShape(t *testing.T) {
	now := time.Date(2025, time.August, 28, 10, 0, 0, 0, time.UTC)
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		id := NewID(now)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}
