package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// defaultKeyPrefix namespaces the document hash and LRU index.
	defaultKeyPrefix = "vttbridge:"

	redisDialTimeout = 5 * time.Second
	redisOpTimeout   = 2 * time.Second
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache shares converted WebVTT documents between server replicas. Each document
// is a field of one hash, keyed by its source URL, and a sorted set orders the URLs by
// last access so the store stays an LRU of at most maxSize documents.
//
//   - {prefix}data holds source URL -> WebVTT text. Fields expire individually through
//     HPEXPIRE, which needs Redis 7.4+ or Valkey 8+. Older servers fail the script after
//     HSET, so Set logs an error and the document stays until Clear.
//   - {prefix}lru holds source URL -> last access time in microseconds.
//
// Both structures change together inside a Lua script, and index members whose
// document already expired are dropped the next time eviction runs.
type redisCache struct {
	client  *redis.Client
	ttl     time.Duration
	maxSize int
	onEvict EvictCallback
	logger  Logger
	dataKey string
	lruKey  string
}

// getAndTouch returns the document for ARGV[2] and bumps its access time to ARGV[1].
// KEYS: data hash, LRU index. A nil reply is a miss.
var getAndTouch = redis.NewScript(`
local doc = redis.call('HGET', KEYS[1], ARGV[2])
if doc then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
end
return doc
`)

// setAndEvict stores document ARGV[1] for URL ARGV[3] with access time ARGV[2] and a
// lifetime of ARGV[5] ms, then pops the oldest URLs until at most ARGV[4] remain.
// KEYS: data hash, LRU index. Replies with the evicted URLs.
var setAndEvict = redis.NewScript(`
local url     = ARGV[3]
local limit   = tonumber(ARGV[4])
local ttlMs   = tonumber(ARGV[5])

redis.call('HSET', KEYS[1], url, ARGV[1])
redis.call('HPEXPIRE', KEYS[1], ttlMs, 'FIELDS', 1, url)
redis.call('ZADD', KEYS[2], ARGV[2], url)

local evicted = {}
local count = redis.call('ZCARD', KEYS[2])
while count > limit do
    local oldest = redis.call('ZPOPMIN', KEYS[2], 1)
    if #oldest == 0 then break end
    redis.call('HDEL', KEYS[1], oldest[1])
    table.insert(evicted, oldest[1])
    count = count - 1
end
return evicted
`)

// normalizeKeyPrefix falls back to defaultKeyPrefix and makes sure the prefix ends in ':'.
func normalizeKeyPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return defaultKeyPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix
}

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	if cfg.Size <= 0 || cfg.TTL <= 0 {
		return nil, fmt.Errorf("redis cache needs a positive size and ttl (size=%d, ttl=%s)", cfg.Size, cfg.TTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := normalizeKeyPrefix(cfg.KeyPrefix)
	return &redisCache{
		client:  client,
		ttl:     cfg.TTL,
		maxSize: cfg.Size,
		onEvict: cfg.OnEvict,
		logger:  cfg.Logger,
		dataKey: prefix + "data",
		lruKey:  prefix + "lru",
	}, nil
}

func (r *redisCache) keys() []string {
	return []string{r.dataKey, r.lruKey}
}

func (r *redisCache) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func (r *redisCache) Get(sourceURL string) ([]byte, bool) {
	ctx, cancel := r.opContext()
	defer cancel()

	now := strconv.FormatInt(time.Now().UnixMicro(), 10)
	result, err := getAndTouch.Run(ctx, r.client, r.keys(), now, sourceURL).Text()
	if err != nil {
		// redis.Nil is a plain miss.
		if !errors.Is(err, redis.Nil) {
			r.logError("redis cache Get failed", err)
		}
		return nil, false
	}
	return []byte(result), true
}

func (r *redisCache) Set(sourceURL string, document []byte) {
	ctx, cancel := r.opContext()
	defer cancel()

	now := strconv.FormatInt(time.Now().UnixMicro(), 10)
	maxSize := strconv.Itoa(r.maxSize)
	ttlMs := strconv.FormatInt(r.ttl.Milliseconds(), 10)

	evicted, err := setAndEvict.Run(ctx, r.client, r.keys(),
		document, now, sourceURL, maxSize, ttlMs,
	).StringSlice()

	if err != nil {
		r.logError("redis cache Set failed", err)
		return
	}

	// Evicted documents are already gone from the hash, so callbacks only get the URL.
	if r.onEvict != nil {
		for _, url := range evicted {
			r.onEvict(url, nil)
		}
	}
}

func (r *redisCache) Contains(sourceURL string) bool {
	ctx, cancel := r.opContext()
	defer cancel()

	n, err := r.client.HExists(ctx, r.dataKey, sourceURL).Result()
	if err != nil {
		r.logError("redis cache Contains failed", err)
	}
	return err == nil && n
}

func (r *redisCache) Len() int {
	ctx, cancel := r.opContext()
	defer cancel()

	n, err := r.client.HLen(ctx, r.dataKey).Result()
	if err != nil {
		r.logError("redis cache Len failed", err)
		return 0
	}
	return int(n)
}

// Clear drops every document and the LRU index in one DEL.
func (r *redisCache) Clear() {
	ctx, cancel := r.opContext()
	defer cancel()

	if err := r.client.Del(ctx, r.dataKey, r.lruKey).Err(); err != nil {
		r.logError("redis cache Clear failed", err)
	}
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
