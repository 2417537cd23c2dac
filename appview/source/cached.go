package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tangled.org/repobrowser/appview/cache"
	"tangled.org/repobrowser/appview/models"
)

const (
	repoKey   = "repo:%s"
	issuesKey = "issues:%s:%s:%d"
)

// Cached memoizes successful responses of another Source. Errors are never
// stored, and a failing store only costs a trip upstream.
type Cached struct {
	upstream Source
	store    cache.Store
	ttl      time.Duration
	logger   *slog.Logger
}

func NewCached(upstream Source, store cache.Store, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{
		upstream: upstream,
		store:    store,
		ttl:      ttl,
		logger:   logger,
	}
}

func (c *Cached) enabled() bool {
	return c.store != nil && c.ttl > 0
}

func (c *Cached) FetchRepository(ctx context.Context, id models.RepoIdentifier) (*models.Repository, error) {
	key := fmt.Sprintf(repoKey, id)

	var repo models.Repository
	if c.lookup(ctx, key, &repo) {
		return &repo, nil
	}

	fetched, err := c.upstream.FetchRepository(ctx, id)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, fetched)
	return fetched, nil
}

func (c *Cached) FetchIssues(ctx context.Context, id models.RepoIdentifier, filter models.FilterState, page int) ([]models.Issue, error) {
	key := fmt.Sprintf(issuesKey, id, filter, page)

	var issues []models.Issue
	if c.lookup(ctx, key, &issues) {
		return issues, nil
	}

	fetched, err := c.upstream.FetchIssues(ctx, id, filter, page)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, fetched)
	return fetched, nil
}

func (c *Cached) lookup(ctx context.Context, key string, v any) bool {
	if !c.enabled() {
		return false
	}
	l := c.logger.With("key", key)
	if IsFresh(ctx) {
		l.Debug("cache bypassed")
		return false
	}

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		l.Warn("cache get failed", "err", err)
		return false
	}
	if !ok {
		l.Debug("cache miss")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		l.Warn("dropping undecodable cache entry", "err", err)
		return false
	}
	l.Debug("cache hit")
	return true
}

func (c *Cached) save(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", "key", key, "err", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "err", err)
	}
}

var _ Source = (*Cached)(nil)
