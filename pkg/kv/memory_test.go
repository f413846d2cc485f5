package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrKeyMiss) {
		t.Fatalf("expected ErrKeyMiss, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("got %q", got)
	}
}

func TestMemoryStoreCAS(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// nil old requires absence
	if err := s.CompareAndSwap(ctx, "k", nil, []byte("v1")); err != nil {
		t.Fatalf("create cas: %v", err)
	}
	if err := s.CompareAndSwap(ctx, "k", nil, []byte("v2")); !errors.Is(err, ErrCASConflict) {
		t.Fatalf("expected conflict on existing key, got %v", err)
	}

	// swap with matching old succeeds
	if err := s.CompareAndSwap(ctx, "k", []byte("v1"), []byte("v2")); err != nil {
		t.Fatalf("swap cas: %v", err)
	}

	// stale old conflicts
	if err := s.CompareAndSwap(ctx, "k", []byte("v1"), []byte("v3")); !errors.Is(err, ErrCASConflict) {
		t.Fatalf("expected conflict on stale old, got %v", err)
	}

	got, _ := s.Get(ctx, "k")
	if string(got) != "v2" {
		t.Fatalf("got %q", got)
	}
}

func TestMemoryStoreLock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock: ok=%v err=%v", ok, err)
	}
	ok, err = s.TryLock(ctx, "lock", time.Minute)
	if err != nil || ok {
		t.Fatalf("second lock should fail: ok=%v err=%v", ok, err)
	}
	if err := s.Unlock(ctx, "lock"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	ok, _ = s.TryLock(ctx, "lock", time.Minute)
	if !ok {
		t.Fatalf("relock after unlock should succeed")
	}
}

func TestMemoryStoreGetCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, "k", []byte("abc"))

	got, _ := s.Get(ctx, "k")
	got[0] = 'z'

	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}
}
