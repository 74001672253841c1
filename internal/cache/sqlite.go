package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

func init() {
	Register("sqlite", newSQLiteCache)
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key         TEXT PRIMARY KEY,
	value       BLOB NOT NULL,
	accessed_at INTEGER NOT NULL,
	expires_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_accessed ON cache_entries(accessed_at);
`

// sqliteCache keeps converted subtitles on disk so they survive restarts of a
// single-node deployment. LRU order is tracked with a per-process access clock;
// expires_at = 0 means the entry never expires.
type sqliteCache struct {
	db      *sql.DB
	ttl     time.Duration
	maxSize int
	onEvict EvictCallback
	logger  Logger

	clockMu sync.Mutex
	clock   int64
}

func newSQLiteCache(cfg ProviderConfig) (Cache, error) {
	if cfg.SQLitePath == "" {
		return nil, errors.New("sqlite cache needs a database path")
	}
	if cfg.Size < 0 {
		return nil, fmt.Errorf("sqlite cache size must not be negative, got %d", cfg.Size)
	}

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite cache: %w", err)
		}
	}

	return &sqliteCache{
		db:      db,
		ttl:     cfg.TTL,
		maxSize: cfg.Size,
		onEvict: cfg.OnEvict,
		logger:  cfg.Logger,
	}, nil
}

func (s *sqliteCache) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, err)
	}
}

// tick returns a strictly increasing access timestamp.
func (s *sqliteCache) tick() int64 {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	now := time.Now().UnixNano()
	if now <= s.clock {
		now = s.clock + 1
	}
	s.clock = now
	return now
}

func (s *sqliteCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ? AND (expires_at = 0 OR expires_at > ?)`,
		key, time.Now().UnixNano(),
	).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logError("sqlite cache Get failed", err)
		}
		return nil, false
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE cache_entries SET accessed_at = ? WHERE key = ?`, s.tick(), key); err != nil {
		s.logError("sqlite cache touch failed", err)
	}
	return value, true
}

func (s *sqliteCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var expiresAt int64
	if s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl).UnixNano()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logError("sqlite cache Set failed", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, accessed_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, accessed_at = excluded.accessed_at, expires_at = excluded.expires_at`,
		key, value, s.tick(), expiresAt,
	); err != nil {
		s.logError("sqlite cache Set failed", err)
		return
	}

	// Expired rows are removed silently; they are not LRU evictions.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at != 0 AND expires_at <= ?`, time.Now().UnixNano(),
	); err != nil {
		s.logError("sqlite cache expiry sweep failed", err)
		return
	}

	evicted, err := s.evictOverflow(ctx, tx)
	if err != nil {
		s.logError("sqlite cache eviction failed", err)
		return
	}

	if err := tx.Commit(); err != nil {
		s.logError("sqlite cache Set commit failed", err)
		return
	}

	if s.onEvict != nil {
		for _, e := range evicted {
			s.onEvict(e.key, e.value)
		}
	}
}

type evictedEntry struct {
	key   string
	value []byte
}

// evictOverflow deletes the least recently used rows beyond maxSize.
func (s *sqliteCache) evictOverflow(ctx context.Context, tx *sql.Tx) ([]evictedEntry, error) {
	if s.maxSize <= 0 {
		return nil, nil
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return nil, err
	}
	overflow := count - s.maxSize
	if overflow <= 0 {
		return nil, nil
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT key, value FROM cache_entries ORDER BY accessed_at ASC LIMIT ?`, overflow)
	if err != nil {
		return nil, err
	}
	var evicted []evictedEntry
	for rows.Next() {
		var e evictedEntry
		if err := rows.Scan(&e.key, &e.value); err != nil {
			rows.Close()
			return nil, err
		}
		evicted = append(evicted, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for _, e := range evicted {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, e.key); err != nil {
			return nil, err
		}
	}
	return evicted, nil
}

func (s *sqliteCache) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM cache_entries WHERE key = ? AND (expires_at = 0 OR expires_at > ?)`,
		key, time.Now().UnixNano(),
	).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logError("sqlite cache Contains failed", err)
	}
	return err == nil
}

func (s *sqliteCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cache_entries WHERE expires_at = 0 OR expires_at > ?`, time.Now().UnixNano(),
	).Scan(&n); err != nil {
		s.logError("sqlite cache Len failed", err)
		return 0
	}
	return n
}

func (s *sqliteCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		s.logError("sqlite cache Clear failed", err)
	}
}

func (s *sqliteCache) Close() error {
	return s.db.Close()
}
