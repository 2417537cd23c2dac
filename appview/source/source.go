// Package source defines where the issue browser gets its data from.
package source

import (
	"context"
	"errors"

	"tangled.org/repobrowser/appview/models"
)

var (
	ErrNotFound    = errors.New("repository not found")
	ErrNetwork     = errors.New("upstream request failed")
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)

// Source fetches repository metadata and issue pages. Results must belong
// to the (filter, page) pair they were requested with.
type Source interface {
	FetchRepository(ctx context.Context, id models.RepoIdentifier) (*models.Repository, error)
	FetchIssues(ctx context.Context, id models.RepoIdentifier, filter models.FilterState, page int) ([]models.Issue, error)
}

type freshKey struct{}

// WithFresh asks caching sources to skip stored responses for calls made
// with the returned context. Fresh results are still stored.
func WithFresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey{}, true)
}

func IsFresh(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshKey{}).(bool)
	return fresh
}

// Classify returns a short name for err suitable for logs and metrics.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "unknown"
}
