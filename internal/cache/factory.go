package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultProvider is used when no provider name is configured.
const DefaultProvider = "memory"

// ProviderConfig describes a store for converted WebVTT documents keyed by source URL.
type ProviderConfig struct {
	// Size is the maximum number of documents. The memory and sqlite providers treat 0 as unbounded.
	Size int

	// TTL is how long a converted document stays valid. 0 disables expiry.
	TTL time.Duration

	// OnEvict is called when an entry is evicted. Not all providers support this.
	OnEvict EvictCallback

	// Logger receives error reports from cache operations. If nil, errors are silently ignored.
	Logger Logger

	// RedisAddress is the Redis/Valkey server address (e.g., "localhost:6379").
	RedisAddress string

	// RedisPassword is the password for the Redis/Valkey server.
	RedisPassword string

	// RedisDB is the Redis/Valkey database number.
	RedisDB int

	// KeyPrefix namespaces the Redis document hash and LRU index. Defaults to "vttbridge:";
	// a missing trailing ':' is added.
	KeyPrefix string

	// SQLitePath is the database file used by the sqlite provider (":memory:" is allowed).
	SQLitePath string

	// Group labels the cache_* Prometheus metrics. When non-empty the cache is
	// wrapped with metric instrumentation.
	Group string
}

// Provider is a constructor function that creates a Cache from config.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register registers a cache provider under the given name.
// It panics if the name is already registered or the provider is nil.
func Register(name string, p Provider) {
	name = normalizeProviderName(name)

	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New opens the document store of the named provider. Names are matched case-insensitively
// and an empty name selects DefaultProvider. A non-empty cfg.Group wraps the store with
// cache_* metrics labelled by the group; the entry gauge is read from Len() at scrape time.
func New(name string, cfg ProviderConfig) (Cache, error) {
	name = normalizeProviderName(name)

	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	original := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if original != nil {
			original(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}

	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders returns a sorted list of registered provider names.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeProviderName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultProvider
	}
	return name
}
