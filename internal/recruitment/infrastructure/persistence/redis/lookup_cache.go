package redis

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/pkg/cache"
	"github.com/wyfcoding/jobportal/pkg/logger"
)

// DefaultLookupTTL 排期表单下拉数据缓存时间
const DefaultLookupTTL = 5 * time.Minute

type lookupCache struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewLookupCache 创建基于 Redis 的下拉数据缓存，读写失败只记日志
func NewLookupCache(c *cache.RedisCache, ttl time.Duration) domain.LookupCache {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &lookupCache{cache: c, ttl: ttl}
}

func (l *lookupCache) Load(ctx context.Context, key string, dest any) bool {
	err := l.cache.GetJSON(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn(ctx, "lookup cache read failed", "key", key, "error", err)
	}
	return false
}

func (l *lookupCache) Store(ctx context.Context, key string, value any) {
	if err := l.cache.SetJSON(ctx, key, value, l.ttl); err != nil {
		logger.Warn(ctx, "lookup cache write failed", "key", key, "error", err)
	}
}

func (l *lookupCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := l.cache.Delete(ctx, keys...); err != nil {
		logger.Warn(ctx, "lookup cache invalidate failed", "keys", keys, "error", err)
	}
}
