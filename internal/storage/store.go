// Package storage implements the transaction store: the authoritative,
// write-through persisted list of transactions. Three backends share one
// contract — a JSON file (the default), SQLite, and a volatile in-memory
// store for tests.
package storage

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"duit/internal/core"
)

// ErrNotFound signals an Update or Remove against an id that is not in the
// store. Removing an already-removed transaction is treated as success by
// the HTTP layer (idempotent delete); updating one is surfaced as 404.
var ErrNotFound = errors.New("transaction not found")

// Store is the transaction store contract. Every mutation persists the
// store's full contents synchronously before returning; there is no window
// where the in-memory list and the persisted form disagree.
type Store interface {
	// List returns a snapshot in storage order: most-recently-added first
	// after Add, whatever was last written otherwise.
	List(ctx context.Context) ([]core.Transaction, error)
	// Get returns the transaction with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (core.Transaction, error)
	// Add assigns a fresh unique ID, stamps CreatedAt once, prepends the
	// record and persists. ID and CreatedAt on the argument are ignored.
	Add(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	// Update replaces every field except ID and CreatedAt, in place.
	Update(ctx context.Context, id string, tx core.Transaction) error
	// Remove deletes by id.
	Remove(ctx context.Context, id string) error
	// Version is a monotonic counter bumped on every mutation. Derived
	// aggregates are cached keyed by it, so a cache hit can never observe
	// stale data.
	Version() uint64
	Close() error
}

// NewID produces a store-unique id: millisecond timestamp prefix plus a
// random suffix. Collisions are a non-fatal correctness risk, not handled
// defensively elsewhere.
func NewID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
