// Package browser holds the issue browser's view state and the three
// operations that move it: Initialize, ChangePage and SelectFilter.
//
// Every operation stamps its fetch with a request sequence number. Only the
// latest issued request may write to the state, so a slow response can
// never overwrite a newer one.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pagination"
	"tangled.org/repobrowser/appview/source"
)

var (
	ErrNotInitialized = errors.New("no repository loaded")
	ErrSuperseded     = errors.New("superseded by a newer request")
	ErrClosed         = errors.New("browser closed")
	ErrInvalidPage    = errors.New("page out of range")
)

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithStrictPaging rejects ChangePage calls that would land below page 1.
func WithStrictPaging() Option {
	return func(c *Controller) {
		c.strict = true
	}
}

type Controller struct {
	src    source.Source
	logger *slog.Logger
	strict bool

	mu     sync.Mutex
	state  models.BrowsingState
	seq    uint64
	closed bool
}

func New(src source.Source, opts ...Option) *Controller {
	c := &Controller{
		src:    src,
		logger: slog.Default(),
		state:  models.DefaultBrowsingState(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns a copy of the current browsing state.
func (c *Controller) State() models.BrowsingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Initialize loads repository metadata and the first page of all issues
// concurrently, committing once both have arrived. Calling it again
// reloads from the defaults.
func (c *Controller) Initialize(ctx context.Context, rawIdentifier string) error {
	id, err := models.ParseRepoIdentifier(rawIdentifier)
	if err != nil {
		return err
	}

	seq, err := c.begin(func(s *models.BrowsingState) error {
		*s = models.DefaultBrowsingState()
		s.Repo = id
		return nil
	})
	if err != nil {
		return err
	}
	l := c.logger.With("op", "Initialize", "repo", id.String(), "seq", seq)
	l.Debug("loading repository")

	var (
		repo   *models.Repository
		issues []models.Issue
		g      errgroup.Group
	)
	g.Go(func() error {
		var err error
		repo, err = c.src.FetchRepository(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		issues, err = c.src.FetchIssues(ctx, id, models.DefaultFilter, pagination.FirstPage().Number)
		return err
	})
	err = g.Wait()

	return c.finish(l, seq, err, func(s *models.BrowsingState) {
		s.Metadata = repo
		s.Issues = issues
	})
}

// ChangePage moves delta pages away from the current one under the active
// filter. Bounds are not checked unless WithStrictPaging is set.
func (c *Controller) ChangePage(ctx context.Context, delta int) error {
	var (
		id     models.RepoIdentifier
		filter models.FilterState
		page   int
	)
	seq, err := c.begin(func(s *models.BrowsingState) error {
		if s.Metadata == nil {
			return ErrNotInitialized
		}
		page = pagination.Page{Number: s.Page}.Shift(delta).Number
		if c.strict && page < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidPage, page)
		}
		id, filter = s.Repo, s.Filter
		return nil
	})
	if err != nil {
		return err
	}
	l := c.logger.With("op", "ChangePage", "repo", id.String(), "filter", filter, "page", page, "seq", seq)

	issues, err := c.src.FetchIssues(ctx, id, filter, page)
	return c.finish(l, seq, err, func(s *models.BrowsingState) {
		s.Issues = issues
		s.Page = page
	})
}

// SelectFilter activates the filter named by token and reloads from the
// first page, since page numbers mean nothing across filters. Selecting
// the active filter again bypasses any response cache.
func (c *Controller) SelectFilter(ctx context.Context, token string) error {
	filter, err := models.ParseFilterState(token)
	if err != nil {
		return err
	}

	var (
		id       models.RepoIdentifier
		reselect bool
	)
	seq, err := c.begin(func(s *models.BrowsingState) error {
		if s.Metadata == nil {
			return ErrNotInitialized
		}
		reselect = s.Filter == filter
		s.Filter = filter
		s.Page = pagination.FirstPage().Number
		id = s.Repo
		return nil
	})
	if err != nil {
		return err
	}
	l := c.logger.With("op", "SelectFilter", "repo", id.String(), "filter", filter, "seq", seq)

	// picking the active filter again is an explicit refresh
	if reselect {
		ctx = source.WithFresh(ctx)
	}
	issues, err := c.src.FetchIssues(ctx, id, filter, pagination.FirstPage().Number)
	return c.finish(l, seq, err, func(s *models.BrowsingState) {
		s.Issues = issues
	})
}

// Close discards the controller. In-flight results are dropped and later
// calls fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.seq++
}

// begin applies mutate and marks the state loading under a single lock,
// then hands out the sequence number of the new request. Nothing changes
// if mutate fails.
func (c *Controller) begin(mutate func(s *models.BrowsingState) error) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}

	next := c.state
	if err := mutate(&next); err != nil {
		return 0, err
	}

	c.seq++
	next.IsLoading = true
	next.Phase = models.PhaseLoading
	c.state = next
	return c.seq, nil
}

func (c *Controller) finish(l *slog.Logger, seq uint64, err error, commit func(s *models.BrowsingState)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		l.Debug("dropping result of closed browser")
		return ErrClosed
	}
	if seq != c.seq {
		l.Debug("dropping stale result", "latest", c.seq, "err", err)
		return ErrSuperseded
	}

	c.state.IsLoading = false
	if err != nil {
		l.Error("fetch failed", "kind", source.Classify(err), "err", err)
		c.state.Phase = models.PhaseFailed
		c.state.Err = err
		return err
	}

	commit(&c.state)
	c.state.Phase = models.PhaseReady
	c.state.Err = nil
	l.Debug("loaded", "issues", len(c.state.Issues))
	return nil
}
