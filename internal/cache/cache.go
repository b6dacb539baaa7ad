// Package cache provides a small in-process LRU cache with TTL, used to
// memoize transaction list snapshots between mutations.
package cache

import (
	"sync"
	"time"
)

// Cache is the read/write surface exposed to callers.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager owns the periodic cleanup loop for a set of caches.
type Manager struct {
	mu     sync.Mutex
	caches []Cleaner

	started     bool
	stopOnce    sync.Once
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the cleanup rotation. Call before
// StartCleanup.
func (m *Manager) Register(cache Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, cache)
}

// StartCleanup sweeps expired entries from every registered cache at the
// given interval until Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			for _, cache := range m.caches {
				cache.CleanExpired()
			}
			m.mu.Unlock()
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup loop and waits for it to exit. Safe to call more
// than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.cleanupDone
		}
	})
}
