package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache is the in-process provider backed by hashicorp/golang-lru/v2/expirable.
// Entries are lost on restart.
type memoryCache struct {
	inner   *lru.LRU[string, []byte]
	purging atomic.Bool
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	if cfg.Size < 0 {
		return nil, fmt.Errorf("cache: memory provider size must not be negative, got %d", cfg.Size)
	}
	// Size 0 and TTL 0 keep every entry for the lifetime of the process.
	m := &memoryCache{}
	m.inner = lru.NewLRU[string, []byte](cfg.Size, func(key string, value []byte) {
		if m.purging.Load() || cfg.OnEvict == nil {
			return
		}
		cfg.OnEvict(key, value)
	}, cfg.TTL)
	return m, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	return m.inner.Get(key)
}

func (m *memoryCache) Set(key string, value []byte) {
	m.inner.Add(key, value)
}

func (m *memoryCache) Contains(key string) bool {
	return m.inner.Contains(key)
}

func (m *memoryCache) Len() int {
	return m.inner.Len()
}

// Clear drops all entries without firing the eviction callback.
func (m *memoryCache) Clear() {
	m.purging.Store(true)
	defer m.purging.Store(false)
	m.inner.Purge()
}

func (m *memoryCache) Close() error {
	return nil
}
