package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pages"
)

// RepoPath is the canonical page of a repository, with the identifier
// escaped into a single path segment.
func RepoPath(repo models.RepoIdentifier) string {
	return "/repository/" + repo.Escaped()
}

// RepoRedirect maps /{owner}/{name} onto RepoPath.
func RepoRedirect(p *pages.Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")
		repo, err := models.ParseRepoIdentifier(raw)
		if err != nil {
			p.Error404(w)
			return
		}
		http.Redirect(w, r, RepoPath(repo), http.StatusMovedPermanently)
	}
}
