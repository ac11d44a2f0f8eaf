package statestore

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps the snapshot in process memory.
type MemoryBackend struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Read(context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, ErrNoSnapshot
	}
	return slices.Clone(b.data), nil
}

func (b *MemoryBackend) Write(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = slices.Clone(data)
	b.writes++
	return nil
}

func (b *MemoryBackend) Delete(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

// Writes returns how many times Write was called.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}
