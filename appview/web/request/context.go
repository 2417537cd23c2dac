package request

import (
	"context"

	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/models"
)

type ctxKeyRepo struct{}
type ctxKeyBrowser struct{}

func WithRepo(ctx context.Context, repo models.RepoIdentifier) context.Context {
	return context.WithValue(ctx, ctxKeyRepo{}, repo)
}

func RepoFromContext(ctx context.Context) (models.RepoIdentifier, bool) {
	repo, ok := ctx.Value(ctxKeyRepo{}).(models.RepoIdentifier)
	return repo, ok
}

func WithBrowser(ctx context.Context, c *browser.Controller) context.Context {
	return context.WithValue(ctx, ctxKeyBrowser{}, c)
}

func BrowserFromContext(ctx context.Context) (*browser.Controller, bool) {
	c, ok := ctx.Value(ctxKeyBrowser{}).(*browser.Controller)
	return c, ok
}
