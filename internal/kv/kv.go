// Package kv provides the namespaced blob storage underneath the local
// fallback store. A namespace holds one opaque value; callers encode a whole
// collection into it and rewrite it in full on every mutation.
package kv

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("kv: store closed")

// UpdateFunc receives the current value (exists is false when the namespace
// has never been written) and returns the value to store. Returning an
// error aborts the update and leaves the namespace untouched.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Store is a namespaced blob store. Update is atomic with respect to every
// other Update on the same store.
type Store interface {
	Get(ctx context.Context, namespace string) ([]byte, bool, error)
	Update(ctx context.Context, namespace string, fn UpdateFunc) error
	Close() error
}

// Memory is an in-process Store. Values are copied on the way in and out.
type Memory struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, namespace string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	value, ok := m.data[namespace]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) Update(ctx context.Context, namespace string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	current, ok := m.data[namespace]
	if ok {
		current = append([]byte(nil), current...)
	}
	next, err := fn(current, ok)
	if err != nil {
		return err
	}
	m.data[namespace] = append([]byte(nil), next...)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
