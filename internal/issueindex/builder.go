package issueindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-flaws/internal/findings"
	"github.com/scan-io-git/scanio-flaws/internal/flawid"
	"github.com/scan-io-git/scanio-flaws/internal/tracker"
)

// Searcher lists open issues carrying all given labels.
type Searcher interface {
	ListIssues(ctx context.Context, labels []string, page int) (*tracker.IssuePage, error)
}

// IndexBuildError aborts a run: an incomplete index could produce duplicates.
type IndexBuildError struct {
	Label string
	Page  int
	Err   error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("failed to build issue index (label %q, page %d): %v", e.Label, e.Page, e.Err)
}

func (e *IndexBuildError) Unwrap() error {
	return e.Err
}

// Build pages through the open issues of every severity label combined with scanLabel.
// Requests are strictly sequential. A page is followed only when GitHub announces
// a next page and the current one was not empty.
func Build(ctx context.Context, searcher Searcher, scanType findings.ScanType, severityLabels []string, scanLabel string, lg hclog.Logger) (*Index, error) {
	idx := New(scanType)
	requests := 0

	for _, severity := range severityLabels {
		query := []string{severity, scanLabel}
		for page := 1; ; {
			requests++
			res, err := searcher.ListIssues(ctx, query, page)
			if err != nil {
				return nil, &IndexBuildError{Label: severity, Page: page, Err: err}
			}

			for _, issue := range res.Issues {
				vid, ok := flawid.Decode(issue.Title)
				if !ok {
					lg.Trace("ignoring issue without flaw id", "number", issue.Number)
					continue
				}
				err := idx.Add(vid, IssueRef{Number: issue.Number, State: issue.State})
				var malformed *flawid.MalformedIdentifierError
				if errors.As(err, &malformed) {
					lg.Warn("ignoring issue with malformed flaw id", "number", issue.Number, "vid", vid.String(), "reason", malformed.Reason)
				}
			}

			if res.NextPage == 0 || res.Empty() {
				break
			}
			page = res.NextPage
		}
	}

	lg.Info("existing issues indexed", "issues", idx.Len(), "requests", requests, "scan_type", string(scanType))
	return idx, nil
}
