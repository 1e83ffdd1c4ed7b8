package store

import (
	"context"
	"sync"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// MemoryCache is a process-local CacheStore, mainly for tests and throwaway
// sessions.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string][]byte{}}
}

func (c *MemoryCache) Has(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	return ok, nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	b, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, blob []byte) error {
	c.mu.Lock()
	c.entries[key] = append([]byte(nil), blob...)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Compile-time assertion that MemoryCache implements domain.CacheStore.
var _ domain.CacheStore = (*MemoryCache)(nil)
