// Package catalog keeps the host's record lists and refreshes them on demand.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/auxmanager/internal/manager"
)

// ErrNoSource is returned for a type without a configured list endpoint. It
// matches manager.ErrRefreshUnsupported so the controller falls back to a reload.
var ErrNoSource = fmt.Errorf("catalog: no source configured: %w", manager.ErrRefreshUnsupported)

// Lister fetches a record list from the host. *manager.Client satisfies it.
type Lister interface {
	List(ctx context.Context, endpoint string) ([]manager.Record, error)
}

// Catalog caches record lists per type in Redis.
type Catalog struct {
	client  *redis.Client
	lister  Lister
	sources map[manager.Type]string
	ttl     time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

// New constructs a Catalog. sources maps a type to the host path listing it.
// A nil redis client disables caching.
func New(client *redis.Client, lister Lister, sources map[manager.Type]string, ttl time.Duration, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	configured := make(map[manager.Type]string, len(sources))
	for t, path := range sources {
		if path != "" {
			configured[t] = path
		}
	}
	return &Catalog{client: client, lister: lister, sources: configured, ttl: ttl, logger: logger}
}

// Configured reports whether at least one type has a source.
func (c *Catalog) Configured() bool {
	return c != nil && len(c.sources) > 0
}

// Records returns the cached list for t, loading it on a miss.
func (c *Catalog) Records(ctx context.Context, t manager.Type) ([]manager.Record, error) {
	if c.client != nil {
		payload, err := c.client.Get(ctx, cacheKey(t)).Bytes()
		switch {
		case err == nil:
			var records []manager.Record
			if err := json.Unmarshal(payload, &records); err == nil {
				return records, nil
			}
			c.logger.Warn("catalog cache entry unreadable", slog.String("type", string(t)))
		case !errors.Is(err, redis.Nil):
			return nil, fmt.Errorf("catalog: read cache: %w", err)
		}
	}
	return c.load(ctx, t)
}

// Refresh re-fetches the list for t from the host and replaces the cache entry.
func (c *Catalog) Refresh(ctx context.Context, t manager.Type) error {
	_, err := c.load(ctx, t)
	return err
}

// load coalesces concurrent fetches of the same type. The shared fetch ignores
// the first caller's cancellation; each caller stops waiting on its own ctx.
func (c *Catalog) load(ctx context.Context, t manager.Type) ([]manager.Record, error) {
	detached := context.WithoutCancel(ctx)
	resultChan := c.group.DoChan(string(t), func() (interface{}, error) {
		return c.fetch(detached, t)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]manager.Record), nil
	}
}

func (c *Catalog) fetch(ctx context.Context, t manager.Type) ([]manager.Record, error) {
	path, ok := c.sources[t]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoSource, t)
	}
	records, err := c.lister.List(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", t, err)
	}
	if c.client != nil {
		raw, err := json.Marshal(records)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, cacheKey(t), raw, c.ttl).Err(); err != nil {
			return nil, fmt.Errorf("catalog: write cache: %w", err)
		}
	}
	c.logger.Debug("catalog refreshed", slog.String("type", string(t)), slog.Int("records", len(records)))
	return records, nil
}

func cacheKey(t manager.Type) string {
	return "catalog:" + string(t)
}
