package models

import (
	"slices"
	"time"
)

type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type Issue struct {
	ID            int64     `json:"id"`
	Number        int       `json:"number"`
	Title         string    `json:"title"`
	HTMLURL       string    `json:"html_url"`
	State         string    `json:"state"`
	Author        User      `json:"user"`
	Labels        []Label   `json:"labels"`
	IsPullRequest bool      `json:"is_pull_request,omitempty"`
	Created       time.Time `json:"created_at"`
}

func (i Issue) clone() Issue {
	i.Labels = slices.Clone(i.Labels)
	return i
}

// CloneIssues copies the list along with every label slice.
func CloneIssues(issues []Issue) []Issue {
	if issues == nil {
		return nil
	}
	out := make([]Issue, len(issues))
	for n, i := range issues {
		out[n] = i.clone()
	}
	return out
}
