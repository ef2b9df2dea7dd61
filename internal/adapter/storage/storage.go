package storage

import (
	"context"
	"errors"
	"maps"
	"sync"
)

var ErrNotFound = errors.New("not found")

// Keys of the durable device state.
const (
	KeyCart                = "carrito"
	KeyAuthenticated       = "isAuthenticated"
	KeyUserEmail           = "userEmail"
	KeyUserRole            = "userRole"
	KeySessionStartedAt    = "sessionStartedAt"
	KeyPendingConfirmation = "pendingConfirmation"
)

// A KV is a string key-value store.
//
// Get returns [ErrNotFound] for a missing key. SetMany writes all pairs or
// none of them.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, kvs map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close()
}

var _ KV = (*MemoryKV)(nil)

// A MemoryKV keeps the values in the process memory.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (s *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryKV) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *MemoryKV) SetMany(ctx context.Context, kvs map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.values, kvs)
	return nil
}

func (s *MemoryKV) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *MemoryKV) Close() {}
