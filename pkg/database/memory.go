package database

import (
	"context"
	"sync"
)

type memoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStorage create a process-local LocalStorage, nothing survives a restart
func NewMemoryStorage() LocalStorage {
	return &memoryStorage{items: make(map[string][]byte)}
}

func (m *memoryStorage) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *memoryStorage) SetItem(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryStorage) Close() error {
	return nil
}
