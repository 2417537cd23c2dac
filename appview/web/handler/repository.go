package handler

import (
	"net/http"

	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/appview/web/request"
	"tangled.org/repobrowser/log"
)

func RepoIssues(p *pages.Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l := log.FromContext(ctx).With("handler", "RepoIssues")
		c, ok := request.BrowserFromContext(ctx)
		if !ok {
			l.Error("malformed request")
			p.Error503(w)
			return
		}

		params := pages.RepoIssuesParams{State: c.State()}
		if params.Loading() {
			w.Header().Set("Cache-Control", "no-store")
		}
		if err := p.RepoIssues(w, params); err != nil {
			l.Error("failed to render", "err", err)
		}
	}
}
