package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidIdentifier = errors.New("invalid repository identifier")

// RepoIdentifier names a repository as owner/name.
type RepoIdentifier struct {
	Owner string
	Name  string
}

// ParseRepoIdentifier decodes a URL-encoded "owner/name" pair, e.g.
// "octocat%2FHello-World".
func ParseRepoIdentifier(raw string) (RepoIdentifier, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return RepoIdentifier{}, fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, raw, err)
	}

	owner, name, ok := strings.Cut(strings.TrimSpace(decoded), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoIdentifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, decoded)
	}

	return RepoIdentifier{Owner: owner, Name: name}, nil
}

func (r RepoIdentifier) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Owner + "/" + r.Name
}

// Escaped is the form used as a single path segment.
func (r RepoIdentifier) Escaped() string {
	return url.PathEscape(r.String())
}

func (r RepoIdentifier) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Repository is the metadata shown in the page header.
type Repository struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Owner       Owner  `json:"owner"`
	Stars       int    `json:"stargazers_count"`
	OpenIssues  int    `json:"open_issues_count"`
}
