package cache

import (
	"fmt"
	"time"

	"github.com/Belphemur/vttbridge/internal/config"
)

// SubtitleGroup is the metrics label of the converted subtitle cache.
const SubtitleGroup = "subtitles"

// NewFromConfig builds the subtitle cache described by the application config.
func NewFromConfig(cfg *config.Config) (Cache, error) {
	ttl := time.Duration(0)
	if cfg.Cache.TTL != "" {
		parsed, err := time.ParseDuration(cfg.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache ttl %q: %w", cfg.Cache.TTL, err)
		}
		ttl = parsed
	}

	return New(cfg.Cache.Provider, ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           ttl,
		Logger:        NewZerologLogger(config.GetLogger()),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		KeyPrefix:     cfg.Cache.Redis.Prefix,
		SQLitePath:    cfg.Cache.SQLite.Path,
		Group:         SubtitleGroup,
	})
}
