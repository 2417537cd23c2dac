package models

import (
	"errors"
	"fmt"
)

var ErrUnknownFilter = errors.New("unknown filter state")

// FilterState is the token sent upstream as the issue "state" parameter.
type FilterState string

const (
	FilterAll    FilterState = "all"
	FilterOpen   FilterState = "open"
	FilterClosed FilterState = "closed"

	DefaultFilter = FilterAll
)

type FilterOption struct {
	State FilterState
	Name  string
}

var filters = [...]FilterOption{
	{State: FilterAll, Name: "All"},
	{State: FilterOpen, Name: "Open"},
	{State: FilterClosed, Name: "Closed"},
}

// Filters returns the fixed, ordered set of filter options.
func Filters() []FilterOption {
	out := make([]FilterOption, len(filters))
	copy(out, filters[:])
	return out
}

func ParseFilterState(s string) (FilterState, error) {
	for _, f := range filters {
		if string(f.State) == s {
			return f.State, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

func (f FilterState) String() string {
	return string(f)
}

// FilterView is a filter option as rendered, with its activation derived
// from the single active state.
type FilterView struct {
	FilterOption
	Active bool
}

func FilterViews(active FilterState) []FilterView {
	views := make([]FilterView, len(filters))
	for i, f := range filters {
		views[i] = FilterView{FilterOption: f, Active: f.State == active}
	}
	return views
}
