// Package github implements source.Source over the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v73/github"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/source"
)

type Config struct {
	BaseURL string
	Token   string
	PerPage int
	Timeout time.Duration
}

type Client struct {
	gh      *gh.Client
	perPage int
}

func New(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := gh.NewClient(&http.Client{Timeout: timeout})
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Client{gh: client, perPage: cfg.PerPage}, nil
}

func (c *Client) FetchRepository(ctx context.Context, id models.RepoIdentifier) (*models.Repository, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, id.Owner, id.Name)
	if err != nil {
		return nil, classify(id, err)
	}

	owner := repo.GetOwner()
	return &models.Repository{
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Description: repo.GetDescription(),
		HTMLURL:     repo.GetHTMLURL(),
		Owner: models.Owner{
			Login:     owner.GetLogin(),
			AvatarURL: owner.GetAvatarURL(),
		},
		Stars:      repo.GetStargazersCount(),
		OpenIssues: repo.GetOpenIssuesCount(),
	}, nil
}

// FetchIssues passes page through untouched; GitHub decides what page 0
// or a negative page means.
func (c *Client) FetchIssues(ctx context.Context, id models.RepoIdentifier, filter models.FilterState, page int) ([]models.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State: filter.String(),
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: c.perPage,
		},
	}

	list, _, err := c.gh.Issues.ListByRepo(ctx, id.Owner, id.Name, opts)
	if err != nil {
		return nil, classify(id, err)
	}

	issues := make([]models.Issue, 0, len(list))
	for _, i := range list {
		issues = append(issues, convertIssue(i))
	}
	return issues, nil
}

func convertIssue(i *gh.Issue) models.Issue {
	user := i.GetUser()
	labels := make([]models.Label, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, models.Label{
			ID:    l.GetID(),
			Name:  l.GetName(),
			Color: l.GetColor(),
		})
	}

	return models.Issue{
		ID:      i.GetID(),
		Number:  i.GetNumber(),
		Title:   i.GetTitle(),
		HTMLURL: i.GetHTMLURL(),
		State:   i.GetState(),
		Author: models.User{
			Login:     user.GetLogin(),
			AvatarURL: user.GetAvatarURL(),
		},
		Labels:        labels,
		IsPullRequest: i.IsPullRequest(),
		Created:       i.GetCreatedAt().Time,
	}
}

func classify(id models.RepoIdentifier, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rle *gh.RateLimitError
	var arle *gh.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &arle) {
		return fmt.Errorf("%s: %w: %v", id, source.ErrRateLimited, err)
	}

	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", id, source.ErrNotFound)
	}

	return fmt.Errorf("%s: %w: %v", id, source.ErrNetwork, err)
}

var _ source.Source = (*Client)(nil)
