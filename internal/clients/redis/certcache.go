package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/envutil"
	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/platform/logger"
)

// CertCache is a short-TTL byte cache for public certificate
// verification lookups. A nil *CertCache is valid and means caching is
// disabled; every method no-ops.
type CertCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewCertCacheFromEnv returns nil when REDIS_ADDR is unset, which keeps
// single-node deployments and tests redis-free.
func NewCertCacheFromEnv(baseLog *logger.Logger) *CertCache {
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	})
	return &CertCache{
		rdb: rdb,
		ttl: envutil.Duration("CERT_CACHE_TTL", 30*time.Second),
		log: baseLog.With("client", "CertCache"),
	}
}

func (c *CertCache) key(number string) string {
	return "cert:verify:" + number
}

func (c *CertCache) Get(ctx context.Context, number string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, c.key(number)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *CertCache) Set(ctx context.Context, number string, payload []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(number), payload, c.ttl).Err(); err != nil {
		c.log.Warn("Failed to cache verification payload", "error", err)
	}
}

// Invalidate drops the cached snapshot so the next lookup reflects a
// fresh progress write immediately instead of after TTL expiry.
func (c *CertCache) Invalidate(ctx context.Context, number string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.key(number)).Err(); err != nil {
		c.log.Warn("Failed to invalidate verification payload", "error", err)
	}
}

func (c *CertCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
