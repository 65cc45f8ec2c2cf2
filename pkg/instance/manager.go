// Package instance keeps server-side page instances between requests.
//
// Each mounted page owns one value (typically a form controller). The
// Manager hands out a random ID for it, expires it after a period of
// inactivity and evicts the least recently used instance once the
// configured capacity is reached.
package instance

import (
	"container/list"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config configures a Manager.
type Config struct {
	// MaxInstances caps the number of live instances. When the cap is
	// reached the least recently used instance is evicted.
	// Default: 10000. Zero or negative means unlimited.
	MaxInstances int

	// IdleTimeout is how long an instance survives without being accessed.
	// Default: 30 minutes.
	IdleTimeout time.Duration

	// CleanupInterval is how often expired instances are swept.
	// Default: 1 minute.
	CleanupInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxInstances:    10000,
		IdleTimeout:     30 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

var (
	// ErrNotFound is returned for unknown or expired instance IDs.
	ErrNotFound = errors.New("instance not found")

	// ErrStopped is returned when operations are attempted on a stopped manager.
	ErrStopped = errors.New("instance manager is stopped")
)

type entry[V any] struct {
	id         string
	value      V
	createdAt  time.Time
	lastActive time.Time
	elem       *list.Element
}

// Manager stores instances of V by ID. It is safe for concurrent use.
type Manager[V any] struct {
	mu sync.Mutex

	entries map[string]*entry[V]

	// LRU order, front = most recently used.
	lru *list.List

	config Config
	logger *slog.Logger

	// now is the clock; overridable for tests.
	now func() time.Time

	done    chan struct{}
	stopped bool
}

// NewManager creates a Manager and starts its cleanup loop. Call Stop to
// release it.
func NewManager[V any](config Config, logger *slog.Logger) *Manager[V] {
	defaults := DefaultConfig()
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager[V]{
		entries: make(map[string]*entry[V]),
		lru:     list.New(),
		config:  config,
		logger:  logger.With("component", "instance_manager"),
		now:     time.Now,
		done:    make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Create stores value under a fresh ID and returns the ID.
func (m *Manager[V]) Create(value V) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return "", ErrStopped
	}

	for m.config.MaxInstances > 0 && len(m.entries) >= m.config.MaxInstances {
		m.evictOldestLocked()
	}

	now := m.now()
	e := &entry[V]{
		id:         uuid.NewString(),
		value:      value,
		createdAt:  now,
		lastActive: now,
	}
	e.elem = m.lru.PushFront(e.id)
	m.entries[e.id] = e

	m.logger.Debug("instance created", "instance_id", e.id, "count", len(m.entries))
	return e.id, nil
}

// Get returns the instance stored under id and marks it as recently used.
// Expired instances are removed and reported as ErrNotFound.
func (m *Manager[V]) Get(id string) (V, error) {
	var zero V

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return zero, ErrStopped
	}

	e, ok := m.entries[id]
	if !ok {
		return zero, ErrNotFound
	}

	now := m.now()
	if now.Sub(e.lastActive) > m.config.IdleTimeout {
		m.removeLocked(id)
		return zero, ErrNotFound
	}

	e.lastActive = now
	m.lru.MoveToFront(e.elem)
	return e.value, nil
}

// Remove deletes the instance stored under id, if any.
func (m *Manager[V]) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

// Len returns the number of stored instances, expired ones included until
// the next sweep.
func (m *Manager[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stop ends the cleanup loop and drops all instances.
func (m *Manager[V]) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	close(m.done)

	m.entries = make(map[string]*entry[V])
	m.lru.Init()
	m.logger.Debug("instance manager stopped")
}

func (m *Manager[V]) removeLocked(id string) {
	e, ok := m.entries[id]
	if !ok {
		return
	}
	delete(m.entries, id)
	m.lru.Remove(e.elem)
	m.logger.Debug("instance removed", "instance_id", id, "remaining", len(m.entries))
}

// evictOldestLocked evicts the least recently used instance.
func (m *Manager[V]) evictOldestLocked() {
	back := m.lru.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	m.removeLocked(id)
	m.logger.Debug("evicted instance", "instance_id", id, "reason", "capacity")
}

func (m *Manager[V]) cleanupLoop() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.done:
			return
		}
	}
}

// cleanupExpired removes instances idle longer than IdleTimeout. The LRU
// back holds the least recently used ones, so the sweep stops at the first
// live entry.
func (m *Manager[V]) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}

	now := m.now()
	removed := 0
	for back := m.lru.Back(); back != nil; back = m.lru.Back() {
		e := m.entries[back.Value.(string)]
		if now.Sub(e.lastActive) <= m.config.IdleTimeout {
			break
		}
		m.removeLocked(e.id)
		removed++
	}

	if removed > 0 {
		m.logger.Debug("expired instances cleaned up", "removed", removed, "remaining", len(m.entries))
	}
}
