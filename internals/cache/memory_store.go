package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	val       []byte
	tags      []string
	expiresAt time.Time
}

// MemoryStore: fallback kalau Redis tidak dikonfigurasi (dev/test, single instance).
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	// index tag → set key, biar invalidasi = lookup, bukan scan
	tagIndex map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]memEntry),
		tagIndex: make(map[string]map[string]struct{}),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		m.removeLocked(key, e.tags)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Overwrite: lepas dulu dari index tag lama
	if old, ok := m.entries[key]; ok {
		m.removeLocked(key, old.tags)
	}

	cp := make([]byte, len(val))
	copy(cp, val)
	m.entries[key] = memEntry{val: cp, tags: tags, expiresAt: time.Now().Add(ttl)}
	for _, tag := range tags {
		set, ok := m.tagIndex[tag]
		if !ok {
			set = make(map[string]struct{})
			m.tagIndex[tag] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

func (m *MemoryStore) InvalidateTags(_ context.Context, tags []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for _, tag := range tags {
		for key := range m.tagIndex[tag] {
			if e, ok := m.entries[key]; ok {
				m.removeLocked(key, e.tags)
				removed++
			}
		}
		delete(m.tagIndex, tag)
	}
	return removed, nil
}

// Len: jumlah entry hidup (untuk test/inspeksi).
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) removeLocked(key string, tags []string) {
	delete(m.entries, key)
	for _, tag := range tags {
		if set, ok := m.tagIndex[tag]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(m.tagIndex, tag)
			}
		}
	}
}
