package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"happi-app-go/internal/config"
	"happi-app-go/internal/domain/catalog"
	"happi-app-go/pkg/logger"
)

const categoriesKey = "happi:catalog:categories"

type client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// NewClient connects and pings with a short timeout.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	opts := &goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// CatalogCache stores the category list as JSON. Redis failures are logged
// and treated as misses.
type CatalogCache struct {
	client client
	log    logger.Logger
}

func NewCatalogCache(c client, log logger.Logger) *CatalogCache {
	return &CatalogCache{client: c, log: log}
}

func (c *CatalogCache) GetCategories(ctx context.Context) ([]catalog.Category, bool) {
	raw, err := c.client.Get(ctx, categoriesKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("cache.catalog: get failed", "err", err)
		return nil, false
	}

	var categories []catalog.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		c.log.Warn("cache.catalog: decode failed", "err", err)
		return nil, false
	}
	return categories, true
}

func (c *CatalogCache) SetCategories(ctx context.Context, categories []catalog.Category, ttl time.Duration) {
	if ttl <= 0 {
		c.Clear(ctx)
		return
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		c.log.Warn("cache.catalog: encode failed", "err", err)
		return
	}
	if err := c.client.Set(ctx, categoriesKey, raw, ttl).Err(); err != nil {
		c.log.Warn("cache.catalog: set failed", "err", err)
	}
}

func (c *CatalogCache) Clear(ctx context.Context) {
	if err := c.client.Del(ctx, categoriesKey).Err(); err != nil {
		c.log.Warn("cache.catalog: delete failed", "err", err)
	}
}
