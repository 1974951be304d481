package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with a capacity bound and per-entry
// TTL. Least-recently-used entries are evicted when the capacity is hit,
// so it is safe to share across long-lived analyses on a device.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

type memoryEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryStore{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// GetJSON retrieves and unmarshals a cached value
func (s *MemoryStore) GetJSON(_ context.Context, key string, dest any) error {
	s.mu.Lock()
	el, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	entry := el.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.order.Remove(el)
		delete(s.entries, key)
		s.mu.Unlock()
		return ErrNotFound
	}
	s.order.MoveToFront(el)
	data := entry.data
	s.mu.Unlock()

	return json.Unmarshal(data, dest)
}

// SetJSON marshals and stores a value with the given TTL (0 = no expiry)
func (s *MemoryStore) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		entry := el.Value.(*memoryEntry)
		entry.data = data
		entry.expiresAt = expiresAt
		s.order.MoveToFront(el)
		return nil
	}

	s.entries[key] = s.order.PushFront(&memoryEntry{key: key, data: data, expiresAt: expiresAt})
	for len(s.entries) > s.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*memoryEntry).key)
	}
	return nil
}

// Delete removes keys from the store
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if el, ok := s.entries[key]; ok {
			s.order.Remove(el)
			delete(s.entries, key)
		}
	}
	return nil
}

// Len returns the number of live entries
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
