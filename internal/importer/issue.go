package importer

import (
	"fmt"
	"strings"

	"github.com/scan-io-git/scanio-flaws/internal/findings"
	"github.com/scan-io-git/scanio-flaws/internal/flawid"
	"github.com/scan-io-git/scanio-flaws/internal/labels"
	"github.com/scan-io-git/scanio-flaws/internal/tracker"
	"github.com/scan-io-git/scanio-flaws/pkg/shared/vcsurl"
)

// permalinkRadius is the number of lines shown around a flaw in source links.
const permalinkRadius = 5

const reviewLinkPrefix = "Veracode issue link to PR: "

func (d *Driver) buildIssue(f findings.Finding, scanLabel string) tracker.NewIssue {
	return tracker.NewIssue{
		IssueRequest: tracker.IssueRequest{
			Title:  flawid.Title(f),
			Body:   buildBody(f, d.permalink(f)),
			Labels: []string{labels.SeverityLabel(f.Severity).Name, scanLabel},
		},
		CWE:        f.Category,
		File:       f.File,
		Line:       f.Line,
		ReviewLink: d.reviewLink(),
	}
}

// buildBody lays out the issue description. An empty permalink is left out.
func buildBody(f findings.Finding, permalink string) string {
	var sb strings.Builder
	if permalink != "" {
		sb.WriteString(permalink)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "**Filename:** %s", f.FileName)
	fmt.Fprintf(&sb, "\n\n**Line:** %d", f.Line)
	if f.FindingCategory != "" {
		fmt.Fprintf(&sb, "\n\n**CWE:** %s (%s ('%s'))", f.Category, f.CategoryName, f.FindingCategory)
	} else {
		fmt.Fprintf(&sb, "\n\n**CWE:** %s (%s)", f.Category, f.CategoryName)
	}
	sb.WriteString("\n\n")
	sb.WriteString(f.Body)
	return sb.String()
}

// permalink links the rewritten source path at the run's ref.
func (d *Driver) permalink(f findings.Finding) string {
	if d.opts.Ref == "" {
		return ""
	}
	start, end := vcsurl.LineWindow(f.Line, permalinkRadius)
	link, err := vcsurl.BuildPermalink(vcsurl.PermalinkParams{
		WebURL:    d.opts.WebURL,
		Namespace: d.opts.Owner,
		Project:   d.opts.Repository,
		Ref:       d.opts.Ref,
		File:      d.opts.PathRules.Rewrite(f.File),
		StartLine: start,
		EndLine:   end,
	})
	if err != nil {
		d.logger.Debug("no permalink for finding", "issue_id", f.IssueID, "error", err)
		return ""
	}
	return link
}

// reviewLink is the comment tying an issue to the run's pull request, empty outside pull requests.
func (d *Driver) reviewLink() string {
	if d.opts.PullRequest <= 0 {
		return ""
	}
	return reviewLinkPrefix + vcsurl.PullRequestURL(d.opts.WebURL, d.opts.Owner, d.opts.Repository, d.opts.PullRequest)
}
