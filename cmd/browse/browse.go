package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"tangled.org/repobrowser/appview/browser"
	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pagination"
	"tangled.org/repobrowser/appview/source"
	"tangled.org/repobrowser/appview/source/github"
	"tangled.org/repobrowser/log"
)

type sourceFunc func(cmd *cli.Command) (source.Source, error)

func githubSource(cmd *cli.Command) (source.Source, error) {
	return github.New(github.Config{
		BaseURL: cmd.String("base-url"),
		Token:   cmd.String("token"),
		PerPage: int(cmd.Int("per-page")),
	})
}

func Command(newSource sourceFunc) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "list the issues of a GitHub repository",
		ArgsUsage: "<owner/name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "state",
				Usage: "issue filter: all, open or closed",
				Value: string(models.DefaultFilter),
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "page to show",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "walk every page from --page on",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON instead of a table",
			},
			&cli.IntFlag{
				Name:  "per-page",
				Usage: "issues per page (1-100)",
				Value: pagination.DefaultLimit,
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "GitHub token",
				Sources: cli.EnvVars("REPOBROWSER_GITHUB_TOKEN", "GITHUB_TOKEN"),
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "GitHub API base URL",
				Value: "https://api.github.com/",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, newSource)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, newSource sourceFunc) error {
	l := log.FromContext(ctx)

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one repository, got %d arguments", cmd.Args().Len())
	}
	page := int(cmd.Int("page"))
	if page < 1 {
		return fmt.Errorf("%w: %d", browser.ErrInvalidPage, page)
	}
	perPage := int(cmd.Int("per-page"))
	if err := pagination.ValidateLimit(perPage); err != nil {
		return fmt.Errorf("--per-page: %w", err)
	}

	src, err := newSource(cmd)
	if err != nil {
		return err
	}
	c := browser.New(src, browser.WithStrictPaging(), browser.WithLogger(l))
	defer c.Close()

	if err := c.Initialize(ctx, cmd.Args().First()); err != nil {
		return err
	}
	if state := cmd.String("state"); state != string(c.State().Filter) {
		if err := c.SelectFilter(ctx, state); err != nil {
			return err
		}
	}

	var issues []models.Issue
	fetch := func(p pagination.Page) ([]models.Issue, error) {
		if delta := p.Number - c.State().Page; delta != 0 {
			if err := c.ChangePage(ctx, delta); err != nil {
				return nil, err
			}
		}
		return c.State().Issues, nil
	}
	collect := func(items []models.Issue) error {
		issues = append(issues, items...)
		return nil
	}

	start := pagination.Page{Number: page, Limit: perPage}
	if cmd.Bool("all") {
		err = pagination.IterateFrom(start, fetch, collect)
	} else {
		var items []models.Issue
		if items, err = fetch(start); err == nil {
			err = collect(items)
		}
	}
	if err != nil {
		return err
	}

	s := c.State()
	if cmd.Bool("json") {
		return printJSON(cmd.Writer, s, issues)
	}
	return printTable(cmd.Writer, s, issues)
}

type output struct {
	Repository *models.Repository `json:"repository"`
	Filter     models.FilterState `json:"filter"`
	Page       int                `json:"page"`
	Issues     []models.Issue     `json:"issues"`
}

func printJSON(w io.Writer, s models.BrowsingState, issues []models.Issue) error {
	if issues == nil {
		issues = []models.Issue{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		Repository: s.Metadata,
		Filter:     s.Filter,
		Page:       s.Page,
		Issues:     issues,
	})
}

func printTable(w io.Writer, s models.BrowsingState, issues []models.Issue) error {
	if m := s.Metadata; m != nil {
		fmt.Fprintf(w, "%s  ★ %s  %s open issues\n", m.FullName, humanize.Comma(int64(m.Stars)), humanize.Comma(int64(m.OpenIssues)))
		if m.Description != "" {
			fmt.Fprintln(w, m.Description)
		}
		fmt.Fprintln(w)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTATE\tTITLE\tAUTHOR\tLABELS\tOPENED")
	for _, i := range issues {
		labels := make([]string, len(i.Labels))
		for n, label := range i.Labels {
			labels[n] = label.Name
		}
		opened := ""
		if !i.Created.IsZero() {
			opened = humanize.Time(i.Created)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i.Number, i.State, i.Title, i.Author.Login, strings.Join(labels, ","), opened)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s issues, page %d\n", s.ActiveFilter().Name, s.Page)
	return nil
}
