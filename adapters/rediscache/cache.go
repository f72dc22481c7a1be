// Package rediscache implements interfaces.ResponseCache on top of Redis:
// invalidation is published to a channel so every server process in the
// cluster drops its local view, and the two version counters are Redis
// INCR-backed so they stay monotonic across restarts of any one process.
package rediscache

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
)

const (
	invalidateChannel      = "registry:invalidate"
	versionDeltaKey        = "registry:version_delta"
	versionDeltaRegionsKey = "registry:version_delta_regions"
)

// Cache is a Redis-backed interfaces.ResponseCache.
type Cache struct {
	client redis.UniversalClient
	ctx    context.Context
	logger log.Logger
}

// New wraps client. ctx bounds every call this Cache makes to Redis; pass
// context.Background() for a long-lived instance.
func New(client redis.UniversalClient, ctx context.Context, logger log.Logger) *Cache {
	logger = log.WithPrefix(logger, "component", "rediscache.Cache")
	return &Cache{client: client, ctx: ctx, logger: logger}
}

// Invalidate publishes an invalidation message and deletes this process's
// own direct cache entries for the three keys.
func (c *Cache) Invalidate(appName, vipAddress, secureVIPAddress string) {
	keys := make([]string, 0, 3)
	if appName != "" {
		keys = append(keys, "registry:app:"+appName)
	}
	if vipAddress != "" {
		keys = append(keys, "registry:vip:"+vipAddress)
	}
	if secureVIPAddress != "" {
		keys = append(keys, "registry:svip:"+secureVIPAddress)
	}
	if len(keys) > 0 {
		if err := c.client.Del(c.ctx, keys...).Err(); err != nil {
			level.Error(c.logger).Log("msg", "redis del failed during invalidate", "err", err)
		}
	}
	payload := fmt.Sprintf("%s|%s|%s", appName, vipAddress, secureVIPAddress)
	if err := c.client.Publish(c.ctx, invalidateChannel, payload).Err(); err != nil {
		level.Error(c.logger).Log("msg", "redis publish failed during invalidate", "err", err)
	}
}

// GetVersionDelta returns the next value of the single-region delta version
// counter.
func (c *Cache) GetVersionDelta() int64 {
	v, err := c.client.Incr(c.ctx, versionDeltaKey).Result()
	if err != nil {
		level.Error(c.logger).Log("msg", "redis incr failed for version delta", "err", err)
		return 0
	}
	return v
}

// GetVersionDeltaWithRegions returns the next value of the multi-region
// delta version counter.
func (c *Cache) GetVersionDeltaWithRegions() int64 {
	v, err := c.client.Incr(c.ctx, versionDeltaRegionsKey).Result()
	if err != nil {
		level.Error(c.logger).Log("msg", "redis incr failed for version delta with regions", "err", err)
		return 0
	}
	return v
}
