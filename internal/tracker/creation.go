package tracker

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// IssueAPI is the mutating half of the GitHub client.
type IssueAPI interface {
	CreateIssue(ctx context.Context, req IssueRequest) (int, error)
	CreateComment(ctx context.Context, number int, body string) error
}

// RemediationRenderer builds the remediation comment for a flaw.
type RemediationRenderer interface {
	Render(cwe, file string, line int) (string, error)
}

// NewIssue is an issue to create together with the data for its comments.
type NewIssue struct {
	IssueRequest
	CWE  string
	File string
	Line int
	// ReviewLink, when set, is posted as a trailing comment.
	ReviewLink string
}

// CreationClient creates issues and their follow-up comments.
type CreationClient struct {
	api         IssueAPI
	remediation RemediationRenderer
	logger      hclog.Logger
}

func NewCreationClient(api IssueAPI, remediation RemediationRenderer, logger hclog.Logger) *CreationClient {
	return &CreationClient{api: api, remediation: remediation, logger: logger}
}

// Create files the issue, then attaches the remediation comment and the review link.
// The issue number is returned even when a comment fails.
func (c *CreationClient) Create(ctx context.Context, issue NewIssue) (int, error) {
	number, err := c.api.CreateIssue(ctx, issue.IssueRequest)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("issue created", "number", number, "title", issue.Title)

	if c.remediation != nil {
		comment, err := c.remediation.Render(issue.CWE, issue.File, issue.Line)
		if err != nil {
			return number, fmt.Errorf("issue #%d: %w", number, err)
		}
		if err := c.api.CreateComment(ctx, number, comment); err != nil {
			return number, err
		}
	}

	if issue.ReviewLink != "" {
		c.logger.Debug("linking issue to pull request", "number", number)
		if err := c.api.CreateComment(ctx, number, issue.ReviewLink); err != nil {
			return number, err
		}
	}
	return number, nil
}

// CommentOnly attaches text to an existing issue.
func (c *CreationClient) CommentOnly(ctx context.Context, number int, text string) error {
	return c.api.CreateComment(ctx, number, text)
}
