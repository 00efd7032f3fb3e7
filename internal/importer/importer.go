// Package importer reconciles scan findings with the issues already filed on GitHub.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-flaws/internal/findings"
	"github.com/scan-io-git/scanio-flaws/internal/flawid"
	"github.com/scan-io-git/scanio-flaws/internal/issueindex"
	"github.com/scan-io-git/scanio-flaws/internal/labels"
	"github.com/scan-io-git/scanio-flaws/internal/matcher"
	"github.com/scan-io-git/scanio-flaws/internal/pathrewrite"
	"github.com/scan-io-git/scanio-flaws/internal/tracker"
)

// IssueCreator is the mutating side of the tracker used by the driver.
type IssueCreator interface {
	Create(ctx context.Context, issue tracker.NewIssue) (int, error)
	CommentOnly(ctx context.Context, number int, text string) error
}

// Options configures one import run.
type Options struct {
	Owner      string
	Repository string
	// Ref is the commit used for source permalinks. Empty disables them.
	Ref    string
	WebURL string
	// PullRequest is the review context of the run, 0 when the run is not tied to a pull request.
	PullRequest      int
	PathRules        pathrewrite.Rules
	WaitTime         time.Duration
	FuzzyWindow      int
	ProgressEvery    int
	ResolvedStatuses []string
	DryRun           bool
}

// Outcome is the terminal state reached by a single finding.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeLinked
	OutcomeSkipped
	OutcomeResolved
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeLinked:
		return "linked"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeResolved:
		return "resolved"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// mutates reports whether reaching o changes tracker state.
func (o Outcome) mutates() bool {
	return o == OutcomeCreated || o == OutcomeLinked
}

// Result summarizes a run. In a dry run the counts describe what would have happened.
type Result struct {
	Processed int
	Created   int
	Linked    int
	Skipped   int
	Resolved  int
	Malformed int
	DryRun    bool
}

// Mutations is the number of findings that created an issue or commented on one.
func (r Result) Mutations() int {
	return r.Created + r.Linked
}

func (r *Result) record(o Outcome) {
	r.Processed++
	switch o {
	case OutcomeCreated:
		r.Created++
	case OutcomeLinked:
		r.Linked++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeResolved:
		r.Resolved++
	case OutcomeMalformed:
		r.Malformed++
	}
}

// Driver runs findings through the duplicate check and files what is new.
// Every tracker call is made sequentially.
type Driver struct {
	searcher issueindex.Searcher
	creator  IssueCreator
	opts     Options
	logger   hclog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates a Driver.
func New(searcher issueindex.Searcher, creator IssueCreator, opts Options, logger hclog.Logger) *Driver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Driver{
		searcher: searcher,
		creator:  creator,
		opts:     opts,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Run indexes the open issues of the result set's scan type and processes every finding
// in file order. The first fatal error stops the run; the partial result is returned with it.
func (d *Driver) Run(ctx context.Context, set *findings.ResultSet) (Result, error) {
	res := Result{DryRun: d.opts.DryRun}

	scanLabel, err := labels.ScanTypeLabel(set.ScanType)
	if err != nil {
		return res, err
	}
	m, err := matcher.New(set.ScanType, d.opts.FuzzyWindow)
	if err != nil {
		return res, err
	}

	idx, err := issueindex.Build(ctx, d.searcher, set.ScanType, labels.SeverityNames(), scanLabel.Name, d.logger)
	if err != nil {
		return res, err
	}

	d.logger.Info("processing findings", "count", len(set.Findings), "scan_type", string(set.ScanType), "dry_run", d.opts.DryRun)
	for i, f := range set.Findings {
		outcome, err := d.process(ctx, f, idx, m, scanLabel.Name)
		if err != nil {
			return res, fmt.Errorf("finding %d %s: %w", f.IssueID, flawid.Encode(f), err)
		}
		res.record(outcome)

		if d.opts.ProgressEvery > 0 && (i+1)%d.opts.ProgressEvery == 0 {
			d.logger.Info("progress", "processed", i+1, "total", len(set.Findings))
		}

		if outcome.mutates() && !d.opts.DryRun && d.opts.WaitTime > 0 && i < len(set.Findings)-1 {
			if err := d.sleep(ctx, d.opts.WaitTime); err != nil {
				return res, err
			}
		}
	}

	d.logger.Info("import finished",
		"processed", res.Processed,
		"created", res.Created,
		"linked", res.Linked,
		"skipped", res.Skipped,
		"resolved", res.Resolved,
		"malformed", res.Malformed,
	)
	return res, nil
}

func (d *Driver) process(ctx context.Context, f findings.Finding, idx *issueindex.Index, m matcher.Matcher, scanLabel string) (Outcome, error) {
	vid := flawid.Encode(f)
	lg := d.logger.With("vid", vid.String(), "issue_id", f.IssueID)

	if d.isResolved(f) {
		lg.Info("skipped, resolved upstream", "resolution_status", f.ResolutionStatus)
		return OutcomeResolved, nil
	}

	match, err := m.Match(vid, idx)
	if err != nil {
		var malformed *flawid.MalformedIdentifierError
		if errors.As(err, &malformed) {
			lg.Warn("cannot match finding, identifier is malformed", "reason", malformed.Reason)
			return OutcomeMalformed, nil
		}
		return 0, err
	}

	if match.IsDuplicate {
		if match.IssueState != "open" || d.opts.PullRequest <= 0 {
			lg.Info("skipped, issue already exists", "number", match.IssueNumber, "state", match.IssueState)
			return OutcomeSkipped, nil
		}
		if d.opts.DryRun {
			lg.Info("dry run, would link issue to pull request", "number", match.IssueNumber, "pull_request", d.opts.PullRequest)
			return OutcomeLinked, nil
		}
		if err := d.creator.CommentOnly(ctx, match.IssueNumber, d.reviewLink()); err != nil {
			return 0, err
		}
		lg.Info("linked existing issue to pull request", "number", match.IssueNumber, "pull_request", d.opts.PullRequest)
		return OutcomeLinked, nil
	}

	issue := d.buildIssue(f, scanLabel)
	if d.opts.DryRun {
		lg.Info("dry run, would create issue", "title", issue.Title, "labels", issue.Labels)
		return OutcomeCreated, nil
	}
	number, err := d.creator.Create(ctx, issue)
	if err != nil {
		if number > 0 {
			lg.Error("issue created but follow-up comment failed", "number", number)
		}
		return 0, err
	}
	lg.Info("created issue", "number", number)
	return OutcomeCreated, nil
}

func (d *Driver) isResolved(f findings.Finding) bool {
	if f.ResolutionStatus == "" {
		return false
	}
	for _, s := range d.opts.ResolvedStatuses {
		if strings.EqualFold(s, f.ResolutionStatus) {
			return true
		}
	}
	return false
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
