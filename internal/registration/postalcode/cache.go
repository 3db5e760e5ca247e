package postalcode

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"signup/internal/registration/metrics"
	"signup/internal/registration/models"
)

const cacheKeyPrefix = "postalcode:"

// CachedClient serves Found results from Redis and falls through to the next
// client on a miss. Only Found results are stored. Redis failures are logged
// and degrade to the upstream call.
type CachedClient struct {
	next    Client
	rdb     redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCachedClient wraps next with a Redis cache; metrics may be nil.
func NewCachedClient(next Client, rdb redis.Cmdable, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedClient{next: next, rdb: rdb, ttl: ttl, metrics: m, logger: logger}
}

func (c *CachedClient) Lookup(ctx context.Context, postalCode string) Result {
	if addr, ok := c.find(ctx, postalCode); ok {
		c.metrics.RecordCacheHit()
		res := Found(addr)
		res.Cached = true
		return res
	}
	c.metrics.RecordCacheMiss()

	res := c.next.Lookup(ctx, postalCode)
	if res.Status == StatusFound {
		c.save(ctx, postalCode, res.Address)
	}
	return res
}

func (c *CachedClient) find(ctx context.Context, postalCode string) (models.AddressRecord, bool) {
	data, err := c.rdb.Get(ctx, cacheKey(postalCode)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "postal code cache read failed", "error", err)
		}
		return models.AddressRecord{}, false
	}
	var addr models.AddressRecord
	if err := json.Unmarshal(data, &addr); err != nil {
		c.logger.WarnContext(ctx, "postal code cache entry undecodable", "error", err)
		return models.AddressRecord{}, false
	}
	if addr.IsEmpty() {
		return models.AddressRecord{}, false
	}
	return addr, true
}

func (c *CachedClient) save(ctx context.Context, postalCode string, addr models.AddressRecord) {
	payload, err := json.Marshal(addr)
	if err != nil {
		c.logger.WarnContext(ctx, "postal code cache encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(postalCode), payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "postal code cache write failed", "error", err)
	}
}

func cacheKey(postalCode string) string {
	return cacheKeyPrefix + postalCode
}
