// Package session keeps a visitor's wizard state (selected site, its area
// rules and the booking in progress) in a durable key-value store so a
// reload resumes the flow where it left off.
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by KV.Get when the key has no value.
var ErrNotFound = errors.New("session: key not found")

// KV is the durable store behind a Store.  Set writes key and, in the
// same operation, renews the lifetime of the touch keys, so entries that
// belong together expire together.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, touch ...string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryKV is a process-local KV.  It is used when Redis is not
// reachable and in tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{data: map[string][]byte{}} }

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value.  Entries never expire, so touch is unused.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, _ ...string) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.data[key] = v
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}
