package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListCache caches public list pages. Entries are keyed by entity, the
// entity's current version and the canonical query string; bumping the
// version orphans every cached page of the entity at once.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

func versionKey(entity string) string {
	return "listcache:" + entity + ":version"
}

func pageKey(entity string, version int64, canonical string) string {
	return "listcache:" + entity + ":v" + strconv.FormatInt(version, 10) + ":" + canonical
}

func (c *ListCache) version(ctx context.Context, entity string) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(entity)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s cache version: %w", entity, err)
	}
	return v, nil
}

// Get decodes a cached page into dest and reports whether it was found. The
// version it looked under is returned for the matching Set, so a page read
// before an invalidation is never stored under the newer version.
func (c *ListCache) Get(ctx context.Context, entity, canonical string, dest any) (bool, int64, error) {
	v, err := c.version(ctx, entity)
	if err != nil {
		return false, 0, err
	}
	data, err := c.rdb.Get(ctx, pageKey(entity, v, canonical)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, v, nil
	}
	if err != nil {
		return false, v, fmt.Errorf("reading cached %s page: %w", entity, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, v, fmt.Errorf("decoding cached %s page: %w", entity, err)
	}
	return true, v, nil
}

// Set stores a page under version, normally the one returned by Get. If the
// entity has moved on since, the entry is orphaned and never served.
func (c *ListCache) Set(ctx context.Context, entity, canonical string, version int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s page: %w", entity, err)
	}
	if err := c.rdb.Set(ctx, pageKey(entity, version, canonical), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching %s page: %w", entity, err)
	}
	return nil
}

// Invalidate bumps the entity version.
func (c *ListCache) Invalidate(ctx context.Context, entity string) error {
	if err := c.rdb.Incr(ctx, versionKey(entity)).Err(); err != nil {
		return fmt.Errorf("bumping %s cache version: %w", entity, err)
	}
	return nil
}
