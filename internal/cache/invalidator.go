// Package cache signals that externally cached renders of public pages
// are stale. Invalidation is fire-and-forget from the workflow's
// perspective: failures are logged, never returned to the caller.
package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Invalidator marks cached renders of public paths as stale
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// redisInvalidator deletes rendered-page keys from redis
type redisInvalidator struct {
	rdb       *redis.Client
	keyPrefix string
	log       zerolog.Logger
}

// NewRedis creates a redis-backed Invalidator. keyPrefix is prepended
// to each public path to form the cache key.
func NewRedis(rdb *redis.Client, keyPrefix string, log zerolog.Logger) Invalidator {
	return &redisInvalidator{
		rdb:       rdb,
		keyPrefix: keyPrefix,
		log:       log.With().Str("component", "cache").Logger(),
	}
}

func (i *redisInvalidator) Invalidate(ctx context.Context, paths ...string) {
	if len(paths) == 0 {
		return
	}

	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		keys = append(keys, i.keyPrefix+p)
	}

	if err := i.rdb.Del(ctx, keys...).Err(); err != nil {
		i.log.Warn().Err(err).Strs("paths", paths).Msg("Cache invalidation failed")
		return
	}
	i.log.Debug().Strs("paths", paths).Msg("Cache invalidated")
}

// noopInvalidator is used when no redis is configured
type noopInvalidator struct{}

// NewNoop creates an Invalidator that does nothing
func NewNoop() Invalidator {
	return noopInvalidator{}
}

func (noopInvalidator) Invalidate(ctx context.Context, paths ...string) {}
