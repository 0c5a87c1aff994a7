package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"bokaap-reservations/models"
)

const menuCacheKey = "menu:items"

// CachedMenu is a cache-aside wrapper around a MenuStore. The menu is edited out
// of band, so entries simply expire after TTL. Redis errors never fail a read.
type CachedMenu struct {
	next   MenuStore
	client *redis.Client
	ttl    time.Duration
}

func NewCachedMenu(next MenuStore, client *redis.Client, ttl time.Duration) *CachedMenu {
	return &CachedMenu{next: next, client: client, ttl: ttl}
}

func (c *CachedMenu) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	raw, err := c.client.Get(ctx, menuCacheKey).Bytes()
	switch {
	case err == nil:
		var items []models.MenuItem
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		slog.Warn("discarding undecodable menu cache entry", "key", menuCacheKey)
	case !errors.Is(err, redis.Nil):
		slog.Warn("menu cache read failed", "err", err)
	}

	items, err := c.next.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return items, nil
	}
	if err := c.client.Set(ctx, menuCacheKey, payload, c.ttl).Err(); err != nil {
		slog.Warn("menu cache write failed", "err", err)
	}
	return items, nil
}

// Invalidate drops the cached menu so the next read goes to the store.
func (c *CachedMenu) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, menuCacheKey).Err()
}
