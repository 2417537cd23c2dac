package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/models"
)

type key struct {
	session string
	repo    models.RepoIdentifier
}

type entry struct {
	c        *browser.Controller
	lastSeen time.Time
}

// Registry keeps one live issue browser per visitor and repository, and
// tears down the ones nobody has looked at for a while.
type Registry struct {
	newController func() *browser.Controller
	ttl           time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu      sync.Mutex
	entries map[key]*entry
}

func NewRegistry(newController func() *browser.Controller, ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		newController: newController,
		ttl:           ttl,
		logger:        logger,
		now:           time.Now,
		entries:       make(map[key]*entry),
	}
}

// GetOrCreate returns the browser for (sessionID, repo). created reports
// whether it is new, in which case the caller is responsible for
// initializing it.
func (r *Registry) GetOrCreate(sessionID string, repo models.RepoIdentifier) (c *browser.Controller, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{sessionID, repo}
	if e, ok := r.entries[k]; ok {
		e.lastSeen = r.now()
		return e.c, false
	}

	e := &entry{c: r.newController(), lastSeen: r.now()}
	r.entries[k] = e
	return e.c, true
}

func (r *Registry) Remove(sessionID string, repo models.RepoIdentifier) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{sessionID, repo}
	if e, ok := r.entries[k]; ok {
		e.c.Close()
		delete(r.entries, k)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep closes every browser idle since before now-ttl and returns how
// many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for k, e := range r.entries {
		if now.Sub(e.lastSeen) > r.ttl {
			e.c.Close()
			delete(r.entries, k)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done, then closes everything.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				r.logger.Debug("swept idle browsers", "count", n)
			}
		case <-ctx.Done():
			r.Close()
			return
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, e := range r.entries {
		e.c.Close()
		delete(r.entries, k)
	}
}
