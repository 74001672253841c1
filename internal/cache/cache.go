package cache

// EvictCallback is called when an entry is evicted from the cache.
// Redis reports evicted keys with a nil value; sqlite and memory pass the stored value.
type EvictCallback func(key string, value []byte)

// Logger receives error reports from cache backends that cannot return them to callers.
type Logger interface {
	Error(msg string, err error)
}

// Cache is a size and TTL bounded key-value store for converted subtitles, keyed by the
// exact source identifier. Implementations may be in-memory or backed by Redis/Valkey or sqlite.
type Cache interface {
	// Get retrieves a value by key. Returns the value and true if found, or nil and false if not.
	Get(key string) ([]byte, bool)

	// Set stores a value with the given key. If the key already exists, it is overwritten.
	Set(key string, value []byte)

	// Contains checks whether a key exists in the cache without affecting LRU ordering.
	Contains(key string) bool

	// Len returns the number of entries currently in the cache.
	Len() int

	// Clear removes every entry. Eviction callbacks are not invoked.
	Clear()

	// Close releases any resources held by the cache (e.g., network connections).
	Close() error
}
