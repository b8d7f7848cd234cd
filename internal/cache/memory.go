package cache

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryImageCache keeps entries for the life of the process.
type MemoryImageCache struct {
	mu      sync.RWMutex
	entries map[string]domain.ProductImages
}

func NewMemoryImageCache() *MemoryImageCache {
	return &MemoryImageCache{entries: make(map[string]domain.ProductImages)}
}

func (m *MemoryImageCache) GetMany(_ context.Context, ids []string) (map[string]domain.ProductImages, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domain.ProductImages, len(ids))
	for _, id := range ids {
		if entry, ok := m.entries[id]; ok {
			out[id] = entry
		}
	}
	return out, nil
}

func (m *MemoryImageCache) SetMany(_ context.Context, entries []domain.ProductImages) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range entries {
		m.entries[entry.ProductID] = entry
	}
	return nil
}
