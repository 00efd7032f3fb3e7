// Package issueindex builds the per-run index of issues previously filed by the importer.
package issueindex

import (
	"github.com/scan-io-git/scanio-flaws/internal/findings"
	"github.com/scan-io-git/scanio-flaws/internal/flawid"
)

// IssueRef points at an existing tracker issue. State is as read at build time.
type IssueRef struct {
	Number int
	State  string
}

// FuzzyEntry is one indexed pipeline issue in a file.
type FuzzyEntry struct {
	Category string
	Line     int
	Issue    IssueRef
}

// Index is built once per run and read-only afterwards.
type Index struct {
	scanType     findings.ScanType
	byIdentifier map[flawid.VID]IssueRef
	byFileFuzzy  map[string][]FuzzyEntry
	seen         map[int]bool
}

// New returns an empty index for scanType.
func New(scanType findings.ScanType) *Index {
	return &Index{
		scanType:     scanType,
		byIdentifier: make(map[flawid.VID]IssueRef),
		byFileFuzzy:  make(map[string][]FuzzyEntry),
		seen:         make(map[int]bool),
	}
}

// Add records an issue under vid. It returns a MalformedIdentifierError when vid does not
// fit the index scheme, in which case nothing is recorded. The first issue seen for a
// VID wins; an issue number seen before is ignored.
func (i *Index) Add(vid flawid.VID, ref IssueRef) error {
	fields, err := flawid.SplitFields(vid, i.scanType)
	if err != nil {
		return err
	}
	if i.seen[ref.Number] {
		return nil
	}
	i.seen[ref.Number] = true

	if _, ok := i.byIdentifier[vid]; !ok {
		i.byIdentifier[vid] = ref
	}
	if i.scanType == findings.ScanTypePipeline {
		i.byFileFuzzy[fields.File] = append(i.byFileFuzzy[fields.File], FuzzyEntry{
			Category: fields.Category,
			Line:     fields.Line,
			Issue:    ref,
		})
	}
	return nil
}

// ScanType is the scheme the index was built for.
func (i *Index) ScanType() findings.ScanType {
	return i.scanType
}

// Lookup finds the issue carrying exactly vid.
func (i *Index) Lookup(vid flawid.VID) (IssueRef, bool) {
	ref, ok := i.byIdentifier[vid]
	return ref, ok
}

// Entries returns the pipeline issues indexed for file in insertion order.
func (i *Index) Entries(file string) []FuzzyEntry {
	return i.byFileFuzzy[file]
}

// Len is the number of distinct indexed issues.
func (i *Index) Len() int {
	return len(i.seen)
}
