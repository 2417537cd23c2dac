package handler

import (
	"context"
	"errors"
	"net/http"

	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/appview/web/request"
	"tangled.org/repobrowser/log"
)

// RepoIssuesFilter activates the posted filter and returns to the
// repository page, which shows either the new issues or the failure.
func RepoIssuesFilter(p *pages.Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l := log.FromContext(ctx).With("handler", "RepoIssuesFilter")
		c, ok := request.BrowserFromContext(ctx)
		repo, _ := request.RepoFromContext(ctx)
		if !ok {
			l.Error("malformed request")
			p.Error503(w)
			return
		}

		err := c.SelectFilter(context.WithoutCancel(ctx), r.FormValue("state"))
		switch {
		case errors.Is(err, models.ErrUnknownFilter):
			p.Error400(w, err.Error())
			return
		case err == nil, errors.Is(err, browser.ErrSuperseded):
		default:
			l.Warn("filter change failed", "repo", repo, "err", err)
		}

		http.Redirect(w, r, RepoPath(repo), http.StatusSeeOther)
	}
}
