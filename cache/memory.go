package cache

import (
	"sync"
	"time"
)

// Entry is one in-process cache record. HasContent distinguishes a
// shallow (snippet-only) result set from a fully enriched one.
type Entry struct {
	Value      any
	HasContent bool
	StoredAt   time.Time
}

// Memory is a bounded in-process cache. Entries expire after the
// configured TTL and, on overflow, the oldest 25% by insertion order are
// evicted. Insertion order only approximates recency; the TTL bounds how
// stale a survivor can get.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string
	maxSize int
	ttl     time.Duration
}

// NewMemory creates a memory cache holding at most maxSize entries.
// A ttl of zero disables time-based expiry.
func NewMemory(maxSize int, ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (m *Memory) Get(key string) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && time.Since(e.StoredAt) > m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e, true
}

func (m *Memory) Put(key string, value any, hasContent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		m.order = append(m.order, key)
	}
	m.entries[key] = &Entry{Value: value, HasContent: hasContent, StoredAt: time.Now()}

	if len(m.entries) > m.maxSize {
		m.evictOldest()
	}
}

// evictOldest drops entries from the front of the insertion order until
// the cache is back at 75% of capacity. Callers must hold the lock.
func (m *Memory) evictOldest() {
	target := m.maxSize * 3 / 4
	i := 0
	for ; i < len(m.order) && len(m.entries) > target; i++ {
		delete(m.entries, m.order[i])
	}
	m.order = append([]string(nil), m.order[i:]...)
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*Entry)
	m.order = nil
}
