package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/appview/session"
	"tangled.org/repobrowser/appview/web/handler"
	"tangled.org/repobrowser/appview/web/middleware"
)

// Rules
// - Use single function for each endpoints (unless it doesn't make sense.)
// - Name handler files following the related path (ancestor paths can be
//   trimmed.)
// - Pass dependencies to each handlers, don't create structs with shared
//   dependencies. Same rule goes to middlewares.

func Router(
	logger *slog.Logger,
	pages *pages.Pages,
	cookies *session.Cookies,
	registry *session.Registry,
	examples []models.RepoIdentifier,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.WithLogger(logger))

	r.Handle("/static/*", pages.Static())

	r.Get("/", handler.Index(pages, examples))
	r.Get("/go", handler.Go(pages))

	r.Route("/repository/{repository}", func(r chi.Router) {
		r.Use(middleware.WithBrowsingSession(cookies, pages))
		r.Use(middleware.ResolveRepo(pages))
		r.Use(middleware.ResolveBrowser(registry, pages))

		r.Get("/", handler.RepoIssues(pages))
		r.Get("/state.json", handler.RepoIssuesState(pages))
		r.Post("/filter", handler.RepoIssuesFilter(pages))
		r.Post("/page", handler.RepoIssuesPage(pages))
	})

	r.Get("/{owner}/{name}", handler.RepoRedirect(pages))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pages.Error404(w)
	})

	return r
}
