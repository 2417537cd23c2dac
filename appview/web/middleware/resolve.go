package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/appview/session"
	"tangled.org/repobrowser/appview/web/request"
	"tangled.org/repobrowser/log"
)

// ResolveRepo parses the URL-encoded {repository} parameter.
func ResolveRepo(p *pages.Pages) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := log.FromContext(ctx)
			raw := chi.URLParam(r, "repository")

			repo, err := models.ParseRepoIdentifier(raw)
			if err != nil {
				l.Warn("failed to resolve repository", "repository", raw, "err", err)
				p.Error400(w, err.Error())
				return
			}

			ctx = request.WithRepo(ctx, repo)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveBrowser looks up the session's browser for the resolved
// repository. A browser created here is initialized before the request
// continues; if that fails it is dropped so the next visit starts over.
func ResolveBrowser(registry *session.Registry, p *pages.Pages) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := log.FromContext(ctx)
			repo, ok := request.RepoFromContext(ctx)
			sess := session.FromContext(ctx)
			if !ok || sess == nil {
				l.Error("malformed middleware")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			c, created := registry.GetOrCreate(sess.ID, repo)
			if created {
				// fetches outlive the request that started them
				err := c.Initialize(context.WithoutCancel(ctx), repo.String())
				if err != nil && !errors.Is(err, browser.ErrSuperseded) {
					l.Warn("failed to load repository", "repo", repo, "err", err)
					registry.Remove(sess.ID, repo)
					p.FetchError(w, err)
					return
				}
			}

			ctx = request.WithBrowser(ctx, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
