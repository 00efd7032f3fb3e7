// Package matcher decides whether a finding already has a tracker issue.
package matcher

import (
	"fmt"

	"github.com/scan-io-git/scanio-flaws/internal/findings"
	"github.com/scan-io-git/scanio-flaws/internal/flawid"
	"github.com/scan-io-git/scanio-flaws/internal/issueindex"
)

// Result of a duplicate check. IssueNumber and IssueState are set only for duplicates.
type Result struct {
	IsDuplicate bool
	IssueNumber int
	IssueState  string
}

// Matcher checks a VID against the existing-issue index.
type Matcher interface {
	Match(vid flawid.VID, idx *issueindex.Index) (Result, error)
}

// New returns the strategy for scanType: exact for policy results,
// fuzzy within window lines for pipeline results.
func New(scanType findings.ScanType, window int) (Matcher, error) {
	switch scanType {
	case findings.ScanTypePolicy:
		return Exact{}, nil
	case findings.ScanTypePipeline:
		if window < 0 {
			return nil, fmt.Errorf("fuzzy window cannot be negative: %d", window)
		}
		return Fuzzy{Window: window}, nil
	default:
		return nil, fmt.Errorf("no matcher for scan type %q", scanType)
	}
}

// Exact matches identifiers verbatim.
type Exact struct{}

func (Exact) Match(vid flawid.VID, idx *issueindex.Index) (Result, error) {
	ref, ok := idx.Lookup(vid)
	if !ok {
		return Result{}, nil
	}
	return duplicateOf(ref), nil
}

// Fuzzy matches a pipeline identifier against issues in the same file with the same
// category whose line is at most Window lines away. The first such issue wins.
type Fuzzy struct {
	Window int
}

func (m Fuzzy) Match(vid flawid.VID, idx *issueindex.Index) (Result, error) {
	fields, err := flawid.SplitFields(vid, findings.ScanTypePipeline)
	if err != nil {
		return Result{}, err
	}

	for _, entry := range idx.Entries(fields.File) {
		if entry.Category != fields.Category {
			continue
		}
		if abs(entry.Line-fields.Line) <= m.Window {
			return duplicateOf(entry.Issue), nil
		}
	}
	return Result{}, nil
}

func duplicateOf(ref issueindex.IssueRef) Result {
	return Result{IsDuplicate: true, IssueNumber: ref.Number, IssueState: ref.State}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
