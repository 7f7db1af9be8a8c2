package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"linkfly/internal/config"
	"linkfly/internal/db"
	"linkfly/models"
)

// Lookup is the fallback source of truth when the cache misses.
type Lookup interface {
	FindLinkByCode(ctx context.Context, shortCode string) (*models.Link, error)
}

type entry struct {
	Link       models.Link `json:"link"`
	FreshUntil int64       `json:"fresh_until"`
	StaleUntil int64       `json:"stale_until"`
}

// LinkCache fronts link lookups with redis snapshots. Entries carry a
// fresh and a stale horizon: fresh hits are served directly, stale
// hits are served while a background refresh runs, expired entries
// refresh inline. Refreshes are deduplicated through singleflight so a
// burst of clicks on one code costs a single DB round trip. The fresh
// TTL is jittered by beta to spread refreshes of hot codes.
//
// Snapshots exist for the redirect decision (destination, active flag,
// expiry, owner); the click counters on a snapshot are allowed to lag,
// since all counter math happens in the store transaction.
type LinkCache struct {
	client *redis.Client
	cfg    config.CacheConfig
	lookup Lookup
	group  singleflight.Group
}

func NewLinkCache(client *redis.Client, cfg config.CacheConfig, lookup Lookup) *LinkCache {
	return &LinkCache{client: client, cfg: cfg, lookup: lookup}
}

func key(shortCode string) string {
	return "link:" + shortCode
}

// Set writes a snapshot with jittered fresh/stale horizons.
func (c *LinkCache) Set(ctx context.Context, link *models.Link) error {
	now := time.Now().Unix()
	freshTTL := c.cfg.FreshTTL
	if c.cfg.Beta > 0 {
		freshTTL = time.Duration(float64(c.cfg.FreshTTL) * (1 - c.cfg.Beta*rand.Float64()))
	}
	e := entry{
		Link:       *link,
		FreshUntil: now + int64(freshTTL.Seconds()),
		StaleUntil: now + int64((freshTTL + c.cfg.StaleTTL).Seconds()),
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(link.ShortCode), payload, 0).Err()
}

// Get returns the link for a short code, from redis when possible and
// from the lookup otherwise. db.ErrLinkNotFound propagates unchanged.
func (c *LinkCache) Get(ctx context.Context, shortCode string) (*models.Link, error) {
	payload, err := c.client.Get(ctx, key(shortCode)).Bytes()
	if err == redis.Nil {
		return c.refresh(ctx, shortCode, nil)
	} else if err != nil {
		// Redis being down must not take redirects with it.
		log.Println("redis error, falling back to store:", err)
		return c.lookup.FindLinkByCode(ctx, shortCode)
	}

	var e entry
	if err := json.Unmarshal(payload, &e); err != nil {
		return c.refresh(ctx, shortCode, nil)
	}

	now := time.Now().Unix()

	if now < e.FreshUntil {
		return &e.Link, nil
	}

	if now < e.StaleUntil {
		stale := e.Link
		go func() {
			_, err, _ := c.group.Do(shortCode, func() (interface{}, error) {
				return c.refresh(context.Background(), shortCode, &stale)
			})
			if err != nil {
				log.Println("background link refresh failed:", err)
			}
		}()
		return &stale, nil
	}

	return c.refresh(ctx, shortCode, nil)
}

// Invalidate drops a snapshot, e.g. after a link is deactivated.
func (c *LinkCache) Invalidate(ctx context.Context, shortCode string) error {
	return c.client.Del(ctx, key(shortCode)).Err()
}

func (c *LinkCache) refresh(ctx context.Context, shortCode string, stale *models.Link) (*models.Link, error) {
	v, err, _ := c.group.Do(shortCode, func() (interface{}, error) {
		// Another caller may have refreshed while we queued.
		if payload, err := c.client.Get(ctx, key(shortCode)).Bytes(); err == nil {
			var e entry
			if json.Unmarshal(payload, &e) == nil && time.Now().Unix() < e.FreshUntil {
				return &e.Link, nil
			}
		}

		link, err := c.lookup.FindLinkByCode(ctx, shortCode)
		if err != nil {
			if stale != nil && !errors.Is(err, db.ErrLinkNotFound) {
				return stale, nil
			}
			return nil, err
		}

		if err := c.Set(ctx, link); err != nil {
			log.Println("failed to cache link snapshot:", err)
		}
		return link, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Link), nil
}
