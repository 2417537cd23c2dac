// Package sourcetest provides an in-memory source.Source for tests.
package sourcetest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/source"
)

type Kind string

const (
	KindRepository Kind = "repository"
	KindIssues     Kind = "issues"
)

type Call struct {
	Kind   Kind
	Repo   models.RepoIdentifier
	Filter models.FilterState
	Page   int
	// Fresh records source.IsFresh for the call's context.
	Fresh bool
}

// Fake serves generated issues for any repository it knows. Hook, when
// set, runs before every response and may block or inject an error.
type Fake struct {
	Hook func(ctx context.Context, c Call) error

	mu    sync.Mutex
	repos map[models.RepoIdentifier]models.Repository
	calls []Call
}

func NewFake(repos ...models.Repository) *Fake {
	f := &Fake{repos: make(map[models.RepoIdentifier]models.Repository)}
	for _, r := range repos {
		f.AddRepository(r)
	}
	return f
}

func Repository(fullName string) models.Repository {
	id, err := models.ParseRepoIdentifier(fullName)
	if err != nil {
		panic(err)
	}
	return models.Repository{
		Name:        id.Name,
		FullName:    id.String(),
		Description: "the " + id.Name + " repository",
		HTMLURL:     "https://github.com/" + id.String(),
		Owner: models.Owner{
			Login:     id.Owner,
			AvatarURL: "https://avatars.githubusercontent.com/" + id.Owner,
		},
	}
}

func (f *Fake) AddRepository(r models.Repository) {
	id, err := models.ParseRepoIdentifier(r.FullName)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	f.repos[id] = r
	f.mu.Unlock()
}

// Issues is the page the fake returns for (filter, page).
func Issues(filter models.FilterState, page int) []models.Issue {
	issues := make([]models.Issue, 2)
	for i := range issues {
		id := int64(page*100 + i)
		issues[i] = models.Issue{
			ID:      id,
			Number:  int(id),
			Title:   fmt.Sprintf("%s issue %d on page %d", filter, i, page),
			HTMLURL: fmt.Sprintf("https://github.com/issues/%d", id),
			State:   string(filter),
			Author:  models.User{Login: "hubot"},
			Labels:  []models.Label{{ID: id, Name: string(filter)}},
			Created: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return issues
}

// SetHook replaces Hook while requests may be in flight.
func (f *Fake) SetHook(hook func(ctx context.Context, c Call) error) {
	f.mu.Lock()
	f.Hook = hook
	f.mu.Unlock()
}

func (f *Fake) record(ctx context.Context, c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	hook := f.Hook
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, c)
	}
	return nil
}

func (f *Fake) FetchRepository(ctx context.Context, id models.RepoIdentifier) (*models.Repository, error) {
	if err := f.record(ctx, Call{Kind: KindRepository, Repo: id, Fresh: source.IsFresh(ctx)}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.repos[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, source.ErrNotFound)
	}
	return &r, nil
}

func (f *Fake) FetchIssues(ctx context.Context, id models.RepoIdentifier, filter models.FilterState, page int) ([]models.Issue, error) {
	if err := f.record(ctx, Call{Kind: KindIssues, Repo: id, Filter: filter, Page: page, Fresh: source.IsFresh(ctx)}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	_, ok := f.repos[id]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, source.ErrNotFound)
	}
	return Issues(filter, page), nil
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *Fake) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

var _ source.Source = (*Fake)(nil)
