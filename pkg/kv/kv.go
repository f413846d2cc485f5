package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyMiss means the key does not exist.
	ErrKeyMiss = errors.New("kv: key not found")
	// ErrCASConflict means the stored value changed under a CompareAndSwap.
	ErrCASConflict = errors.New("kv: compare-and-swap conflict")
)

// Store is the persistent key-value store the engine runs against. Values are
// opaque bytes; callers own serialization. CompareAndSwap provides the
// optimistic concurrency needed for read-modify-write sequences on series
// records, and TryLock backs the refresh-loop guard.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// CompareAndSwap writes value only if the stored bytes still equal old.
	// old == nil requires the key to be absent. Returns ErrCASConflict when
	// the precondition fails.
	CompareAndSwap(ctx context.Context, key string, old, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Close() error
}
