// Package tracker talks to GitHub issues and classifies its failures.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v47/github"

	"github.com/scan-io-git/scanio-flaws/internal/config"
	"github.com/scan-io-git/scanio-flaws/internal/labels"
)

const openState = "open"

// Issue is the subset of a GitHub issue the importer reads.
type Issue struct {
	Number int
	Title  string
	State  string
}

// IssuePage is one page of a label search. NextPage is 0 on the last page.
// Fetched counts every item GitHub returned, pull requests included.
type IssuePage struct {
	Issues   []Issue
	NextPage int
	Fetched  int
}

// Empty reports whether GitHub returned no items at all.
func (p *IssuePage) Empty() bool {
	return p.Fetched == 0 && len(p.Issues) == 0
}

// IssueRequest holds the fields of a new issue.
type IssueRequest struct {
	Title  string
	Body   string
	Labels []string
}

// GitHubClient wraps go-github for a single repository.
type GitHubClient struct {
	client  *github.Client
	owner   string
	repo    string
	perPage int
}

// NewGitHubClient creates a client for owner/repo using httpClient for transport.
func NewGitHubClient(httpClient *http.Client, cfg config.GitHub, owner, repo string) (*GitHubClient, error) {
	client := github.NewClient(httpClient)
	if cfg.APIURL != "" {
		baseURL, err := url.Parse(cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.APIURL, err)
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		client.BaseURL = baseURL
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = config.DefaultPerPage
	}
	return &GitHubClient{client: client, owner: owner, repo: repo, perPage: perPage}, nil
}

// ListIssues returns one page of open issues carrying every label in labelNames.
// Pull requests returned by the endpoint are dropped.
func (c *GitHubClient) ListIssues(ctx context.Context, labelNames []string, page int) (*IssuePage, error) {
	opts := &github.IssueListByRepoOptions{
		State:       openState,
		Labels:      labelNames,
		ListOptions: github.ListOptions{Page: page, PerPage: c.perPage},
	}
	issues, resp, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, Classify(OpListIssues, strings.Join(labelNames, ","), err)
	}

	result := &IssuePage{Issues: make([]Issue, 0, len(issues)), Fetched: len(issues)}
	if resp != nil {
		result.NextPage = resp.NextPage
	}
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			State:  issue.GetState(),
		})
	}
	return result, nil
}

// CreateIssue files a new issue and returns its number.
func (c *GitHubClient) CreateIssue(ctx context.Context, req IssueRequest) (int, error) {
	issueLabels := append([]string(nil), req.Labels...)
	created, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, &github.IssueRequest{
		Title:  github.String(req.Title),
		Body:   github.String(req.Body),
		Labels: &issueLabels,
	})
	if err != nil {
		return 0, Classify(OpCreateIssue, req.Title, err)
	}
	return created.GetNumber(), nil
}

// CreateComment appends body to issue number.
func (c *GitHubClient) CreateComment(ctx context.Context, number int, body string) error {
	_, _, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return Classify(OpCreateComment, fmt.Sprintf("#%d", number), err)
	}
	return nil
}

// ListLabels returns one page of repository labels and the next page number.
func (c *GitHubClient) ListLabels(ctx context.Context, page int) ([]labels.Label, int, error) {
	ghLabels, resp, err := c.client.Issues.ListLabels(ctx, c.owner, c.repo, &github.ListOptions{Page: page, PerPage: c.perPage})
	if err != nil {
		return nil, 0, Classify(OpListLabels, c.owner+"/"+c.repo, err)
	}

	result := make([]labels.Label, 0, len(ghLabels))
	for _, l := range ghLabels {
		result = append(result, labels.Label{Name: l.GetName(), Color: l.GetColor(), Description: l.GetDescription()})
	}
	next := 0
	if resp != nil {
		next = resp.NextPage
	}
	return result, next, nil
}

// CreateLabel creates label; a label that already exists is not an error.
func (c *GitHubClient) CreateLabel(ctx context.Context, label labels.Label) error {
	_, _, err := c.client.Issues.CreateLabel(ctx, c.owner, c.repo, &github.Label{
		Name:        github.String(label.Name),
		Color:       github.String(label.Color),
		Description: github.String(label.Description),
	})
	if err == nil || alreadyExists(err) {
		return nil
	}
	return Classify(OpCreateLabel, label.Name, err)
}

func alreadyExists(err error) bool {
	var respErr *github.ErrorResponse
	if !errors.As(err, &respErr) || respErr.Response == nil || respErr.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	for _, e := range respErr.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}
	return false
}
