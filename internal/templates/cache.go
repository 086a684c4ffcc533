package templates

import (
	"bytes"
	"context"
	"errors"
	"time"

	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/common/metrics"
	"inspection-workers/internal/report"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "inspection:template:"

var zipMagic = []byte("PK\x03\x04")

// CachedSource keeps fetched templates in Redis. Redis failures are logged
// and the underlying source is used.
type CachedSource struct {
	next   Source
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next Source, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "template-cache"}),
	}
}

func (c *CachedSource) Describe(t report.ReportType) string {
	return c.next.Describe(t)
}

func (c *CachedSource) Fetch(ctx context.Context, t report.ReportType) ([]byte, error) {
	key := cacheKeyPrefix + string(t)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.TemplateFetches.WithLabelValues("cache", "hit").Inc()
		return data, nil
	case errors.Is(err, redis.Nil):
		metrics.TemplateFetches.WithLabelValues("cache", "miss").Inc()
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("template cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	data, err = c.next.Fetch(ctx, t)
	if err != nil {
		return nil, err
	}

	// Only zip containers are cached; anything else fails in Load and must
	// not outlive this request.
	if !bytes.HasPrefix(data, zipMagic) {
		c.logger.Warn("template is not a zip container, not caching", map[string]interface{}{
			"key":  key,
			"size": len(data),
		})
		return data, nil
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("template cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return data, nil
}

// Invalidate drops the cached template of a report type.
func (c *CachedSource) Invalidate(ctx context.Context, t report.ReportType) error {
	return c.redis.Del(ctx, cacheKeyPrefix+string(t)).Err()
}
