// Package cache keeps the project status statistics in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/pkg/metrics"
)

const (
	statsKey   = "projecttracker:projects:stats"
	defaultTTL = time.Minute
)

// StatsCache caches the active-project count per status. A nil client
// disables caching: Get always misses and writes are dropped.
type StatsCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &StatsCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *StatsCache) Get(ctx context.Context) (map[model.ProjectStatus]int64, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, statsKey).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup("project_stats", "miss")
		return nil, false
	case err != nil:
		metrics.RecordCacheLookup("project_stats", "error")
		c.logger.Warn("Stats cache read failed", zap.Error(err))
		return nil, false
	}

	var stats map[model.ProjectStatus]int64
	if err := json.Unmarshal(raw, &stats); err != nil {
		metrics.RecordCacheLookup("project_stats", "error")
		c.logger.Warn("Stats cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	metrics.RecordCacheLookup("project_stats", "hit")
	return stats, true
}

func (c *StatsCache) Set(ctx context.Context, stats map[model.ProjectStatus]int64) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, statsKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Stats cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached statistics after a project write.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, statsKey).Err(); err != nil {
		c.logger.Warn("Stats cache invalidation failed", zap.Error(err))
	}
}
