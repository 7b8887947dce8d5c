// Package kv stores the five collections as JSON values in a key-value
// backend, laid out the way the browser app keeps them in localStorage.
package kv

import (
	"context"
	"sync"
)

// KV is a minimal transactional key-value backend.
type KV interface {
	// Get returns the values stored under keys. Missing keys are absent
	// from the result.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	// Txn reads keys, hands their values to fn, and writes back the map fn
	// returns, atomically with respect to other Txn calls. fn may run more
	// than once if a concurrent writer gets there first.
	Txn(ctx context.Context, keys []string, fn func(cur map[string][]byte) (map[string][]byte, error)) error
	Close() error
}

// Memory is an in-process KV guarded by a mutex.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyKeys(keys), nil
}

func (m *Memory) Txn(ctx context.Context, keys []string, fn func(map[string][]byte) (map[string][]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	writes, err := fn(m.copyKeys(keys))
	if err != nil {
		return err
	}
	for k, v := range writes {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

// Set stores a raw value. Used to seed data and in tests.
func (m *Memory) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
}

func (m *Memory) Close() error { return nil }

func (m *Memory) copyKeys(keys []string) map[string][]byte {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out
}
