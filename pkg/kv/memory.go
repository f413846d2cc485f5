package kv

import (
	"bytes"
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    []byte
	expireAt time.Time // zero means no expiry
}

func (m *memoryItem) expired() bool {
	return !m.expireAt.IsZero() && time.Now().After(m.expireAt)
}

// MemoryStore implements Store in process memory. Used for tests and
// single-node development runs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]*memoryItem
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*memoryItem)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if !ok || item.expired() {
		if ok {
			delete(s.data, key)
		}
		return nil, ErrKeyMiss
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = &memoryItem{value: v}
	return nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, key string, old, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.data[key]
	if ok && item.expired() {
		delete(s.data, key)
		ok = false
	}

	if old == nil {
		if ok {
			return ErrCASConflict
		}
	} else {
		if !ok || !bytes.Equal(item.value, old) {
			return ErrCASConflict
		}
	}

	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = &memoryItem{value: v}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *MemoryStore) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.data[key]; ok && !item.expired() {
		return false, nil
	}
	s.data[key] = &memoryItem{value: []byte("locked"), expireAt: time.Now().Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Unlock(ctx context.Context, key string) error {
	return s.Delete(ctx, key)
}

func (s *MemoryStore) Close() error { return nil }
