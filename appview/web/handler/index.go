package handler

import (
	"net/http"
	"strings"

	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/log"
)

func Index(p *pages.Pages, examples []models.RepoIdentifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := log.FromContext(r.Context()).With("handler", "Index")
		if err := p.Index(w, pages.IndexParams{Examples: examples}); err != nil {
			l.Error("failed to render", "err", err)
		}
	}
}

// Go sends the index form's ?repository=owner/name to the repository page.
func Go(p *pages.Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("repository"))
		repo, err := models.ParseRepoIdentifier(raw)
		if err != nil {
			p.Error400(w, err.Error())
			return
		}
		http.Redirect(w, r, RepoPath(repo), http.StatusFound)
	}
}
