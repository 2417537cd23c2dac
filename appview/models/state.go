package models

import "tangled.org/repobrowser/appview/pagination"

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// BrowsingState is a snapshot of what the issue browser is showing.
type BrowsingState struct {
	Repo      RepoIdentifier
	Phase     Phase
	Page      int
	IsLoading bool
	Filter    FilterState
	Metadata  *Repository
	Issues    []Issue
	Err       error
}

func DefaultBrowsingState() BrowsingState {
	return BrowsingState{
		Phase:  PhaseUninitialized,
		Page:   1,
		Filter: DefaultFilter,
	}
}

func (s BrowsingState) Clone() BrowsingState {
	if s.Metadata != nil {
		m := *s.Metadata
		s.Metadata = &m
	}
	s.Issues = CloneIssues(s.Issues)
	return s
}

func (s BrowsingState) ActiveFilter() FilterOption {
	for _, f := range filters {
		if f.State == s.Filter {
			return f
		}
	}
	return filters[0]
}

func (s BrowsingState) Filters() []FilterView {
	return FilterViews(s.Filter)
}

func (s BrowsingState) HasPrevious() bool {
	return pagination.Page{Number: s.Page}.HasPrevious()
}

// CanNavigate reports whether the filter and page controls should be
// enabled.
func (s BrowsingState) CanNavigate() bool {
	return !s.IsLoading && (s.Phase == PhaseReady || s.Phase == PhaseFailed)
}
