package handler

import (
	"encoding/json"
	"net/http"

	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pages"
	"tangled.org/repobrowser/appview/source"
	"tangled.org/repobrowser/appview/web/request"
	"tangled.org/repobrowser/log"
)

type StateView struct {
	Repository string             `json:"repository"`
	Phase      models.Phase       `json:"phase"`
	Page       int                `json:"page"`
	Loading    bool               `json:"loading"`
	Filter     models.FilterState `json:"filter"`
	Filters    []FilterView       `json:"filters"`
	Metadata   *models.Repository `json:"metadata,omitempty"`
	Issues     []models.Issue     `json:"issues"`
	Error      string             `json:"error,omitempty"`
	ErrorKind  string             `json:"error_kind,omitempty"`
}

type FilterView struct {
	State  models.FilterState `json:"state"`
	Name   string             `json:"name"`
	Active bool               `json:"active"`
}

func NewStateView(s models.BrowsingState) StateView {
	v := StateView{
		Repository: s.Repo.String(),
		Phase:      s.Phase,
		Page:       s.Page,
		Loading:    s.IsLoading,
		Filter:     s.Filter,
		Metadata:   s.Metadata,
		Issues:     s.Issues,
	}
	if v.Issues == nil {
		v.Issues = []models.Issue{}
	}
	for _, f := range s.Filters() {
		v.Filters = append(v.Filters, FilterView{State: f.State, Name: f.Name, Active: f.Active})
	}
	if s.Err != nil {
		v.Error = pages.ErrorMessage(s.Err)
		v.ErrorKind = source.Classify(s.Err)
	}
	return v
}

// RepoIssuesState serves the browsing state as JSON, for clients that poll
// instead of following page refreshes.
func RepoIssuesState(p *pages.Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l := log.FromContext(ctx).With("handler", "RepoIssuesState")
		c, ok := request.BrowserFromContext(ctx)
		if !ok {
			l.Error("malformed request")
			p.Error503(w)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(NewStateView(c.State())); err != nil {
			l.Error("failed to encode state", "err", err)
		}
	}
}
