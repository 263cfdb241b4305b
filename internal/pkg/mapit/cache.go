package mapit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps successful MapIt response bodies keyed by request url.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
}

func WithCache(c Cache) Option {
	return func(cl *client) {
		cl.cache = c
	}
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) Cache {
	return &redisCache{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

// NewRedisCacheFromURL connects to the redis server at a redis:// url.
func NewRedisCacheFromURL(ctx context.Context, redisURL string, ttl time.Duration) (Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return NewRedisCache(rdb, "mapit:", ttl), nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return b, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, body []byte) error {
	return c.rdb.Set(ctx, c.prefix+key, body, c.ttl).Err()
}
