package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/appview/web/request"
	"tangled.org/repobrowser/log"
)

// RepoIssuesPage moves the posted delta of pages away from the current one.
func RepoIssuesPage(p *pages.Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l := log.FromContext(ctx).With("handler", "RepoIssuesPage")
		c, ok := request.BrowserFromContext(ctx)
		repo, _ := request.RepoFromContext(ctx)
		if !ok {
			l.Error("malformed request")
			p.Error503(w)
			return
		}

		delta, err := strconv.Atoi(r.FormValue("delta"))
		if err != nil {
			p.Error400(w, "delta must be an integer")
			return
		}

		err = c.ChangePage(context.WithoutCancel(ctx), delta)
		switch {
		case errors.Is(err, browser.ErrInvalidPage):
			p.Error400(w, err.Error())
			return
		case err == nil, errors.Is(err, browser.ErrSuperseded):
		default:
			l.Warn("page change failed", "repo", repo, "delta", delta, "err", err)
		}

		http.Redirect(w, r, RepoPath(repo), http.StatusSeeOther)
	}
}
