package issueindex

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-flaws/internal/findings"
	"github.com/scan-io-git/scanio-flaws/internal/flawid"
	"github.com/scan-io-git/scanio-flaws/internal/tracker"
)

type request struct {
	labels string
	page   int
}

// fakeSearcher serves pages keyed by the joined label query.
type fakeSearcher struct {
	pages    map[string][]*tracker.IssuePage
	failOn   request
	requests []request
}

func (f *fakeSearcher) ListIssues(_ context.Context, labels []string, page int) (*tracker.IssuePage, error) {
	r := request{labels: strings.Join(labels, ","), page: page}
	f.requests = append(f.requests, r)
	if r == f.failOn {
		return nil, &tracker.RequestFailedError{Operation: tracker.OpListIssues, Subject: r.labels, StatusCode: 502, Message: "Bad Gateway"}
	}
	pages := f.pages[r.labels]
	if page < 1 || page > len(pages) {
		return &tracker.IssuePage{}, nil
	}
	return pages[page-1], nil
}

func issue(number int, title string) tracker.Issue {
	return tracker.Issue{Number: number, Title: title, State: "open"}
}

func TestBuildPaginationTerminates(t *testing.T) {
	searcher := &fakeSearcher{pages: map[string][]*tracker.IssuePage{
		"High,Pipeline": {
			{Issues: []tracker.Issue{issue(1, "XSS [VID:80:a.jsp:10]")}, NextPage: 2},
			{Issues: []tracker.Issue{issue(2, "SQLi [VID:89:b.java:20]")}, NextPage: 3},
			{},
		},
		"Low,Pipeline": {
			{Issues: []tracker.Issue{issue(3, "Log forging [VID:117:c.java:5]")}, NextPage: 2},
			{Issues: []tracker.Issue{issue(4, "Log forging [VID:117:c.java:50]")}, NextPage: 3},
			{},
		},
	}}

	idx, err := Build(context.Background(), searcher, findings.ScanTypePipeline, []string{"High", "Low"}, "Pipeline", hclog.NewNullLogger())
	require.NoError(t, err)

	assert.Equal(t, []request{
		{"High,Pipeline", 1}, {"High,Pipeline", 2}, {"High,Pipeline", 3},
		{"Low,Pipeline", 1}, {"Low,Pipeline", 2}, {"Low,Pipeline", 3},
	}, searcher.requests)
	assert.Equal(t, 4, idx.Len())
	assert.Len(t, idx.Entries("c.java"), 2)
}

func TestBuildStopsOnEmptyPageWithNextLink(t *testing.T) {
	searcher := &fakeSearcher{pages: map[string][]*tracker.IssuePage{
		"High,Policy": {
			{Issues: []tracker.Issue{issue(1, "CRLF [VID:42]")}, NextPage: 2},
			{NextPage: 3},
			{Issues: []tracker.Issue{issue(9, "never fetched [VID:9]")}},
		},
	}}

	idx, err := Build(context.Background(), searcher, findings.ScanTypePolicy, []string{"High"}, "Policy", hclog.NewNullLogger())
	require.NoError(t, err)

	assert.Len(t, searcher.requests, 2)
	_, ok := idx.Lookup("[VID:9]")
	assert.False(t, ok)
}

func TestBuildFollowsPagesOfPullRequests(t *testing.T) {
	searcher := &fakeSearcher{pages: map[string][]*tracker.IssuePage{
		"High,Policy": {
			{Fetched: 2, NextPage: 2},
			{Issues: []tracker.Issue{issue(7, "Hard-coded password [VID:7]")}, Fetched: 1},
		},
	}}

	idx, err := Build(context.Background(), searcher, findings.ScanTypePolicy, []string{"High"}, "Policy", hclog.NewNullLogger())
	require.NoError(t, err)

	ref, ok := idx.Lookup("[VID:7]")
	require.True(t, ok)
	assert.Equal(t, 7, ref.Number)
}

func TestBuildSkipsForeignAndMalformedTitles(t *testing.T) {
	searcher := &fakeSearcher{pages: map[string][]*tracker.IssuePage{
		"High,Policy": {{Issues: []tracker.Issue{
			issue(1, "Manually filed"),
			issue(2, "Composite id [VID:80:a.jsp:3]"),
			issue(3, "CRLF Injection [VID:42]"),
			issue(4, "Copy of CRLF Injection [VID:42]"),
			issue(5, "Not a number [VID:abc]"),
		}}},
	}}

	idx, err := Build(context.Background(), searcher, findings.ScanTypePolicy, []string{"High"}, "Policy", hclog.NewNullLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())
	ref, ok := idx.Lookup("[VID:42]")
	require.True(t, ok)
	assert.Equal(t, IssueRef{Number: 3, State: "open"}, ref)
	_, ok = idx.Lookup("[VID:80:a.jsp:3]")
	assert.False(t, ok)
}

func TestBuildIndexesPastLookalikeBrackets(t *testing.T) {
	searcher := &fakeSearcher{pages: map[string][]*tracker.IssuePage{
		"High,Policy": {{Issues: []tracker.Issue{
			issue(1, "[VIDEO] CRLF Injection [VID:42]"),
			issue(2, "[VIDEO] Manually filed"),
		}}},
		"High,Pipeline": {{Issues: []tracker.Issue{
			issue(3, "[VIDEO] Open Redirect [VID:601:src/a:b.c:5]"),
		}}},
	}}

	idx, err := Build(context.Background(), searcher, findings.ScanTypePolicy, []string{"High"}, "Policy", hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	ref, ok := idx.Lookup("[VID:42]")
	require.True(t, ok)
	assert.Equal(t, 1, ref.Number)

	idx, err = Build(context.Background(), searcher, findings.ScanTypePipeline, []string{"High"}, "Pipeline", hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Equal(t, []FuzzyEntry{
		{Category: "601", Line: 5, Issue: IssueRef{Number: 3, State: "open"}},
	}, idx.Entries("src/a:b.c"))
}

func TestBuildFailureIsFatal(t *testing.T) {
	searcher := &fakeSearcher{
		pages: map[string][]*tracker.IssuePage{
			"High,Policy": {{Issues: []tracker.Issue{issue(1, "CRLF [VID:1]")}, NextPage: 2}},
		},
		failOn: request{"High,Policy", 2},
	}

	idx, err := Build(context.Background(), searcher, findings.ScanTypePolicy, []string{"High", "Low"}, "Policy", hclog.NewNullLogger())
	require.Error(t, err)
	assert.Nil(t, idx)

	var buildErr *IndexBuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, "High", buildErr.Label)
	assert.Equal(t, 2, buildErr.Page)

	var failed *tracker.RequestFailedError
	assert.True(t, errors.As(err, &failed))
	assert.Len(t, searcher.requests, 2)
}

func TestIndexAdd(t *testing.T) {
	idx := New(findings.ScanTypePipeline)

	require.NoError(t, idx.Add("[VID:80:a.jsp:10]", IssueRef{Number: 1, State: "open"}))
	require.NoError(t, idx.Add("[VID:89:a.jsp:30]", IssueRef{Number: 2, State: "closed"}))
	require.NoError(t, idx.Add("[VID:89:a.jsp:30]", IssueRef{Number: 2, State: "closed"}))

	var malformed *flawid.MalformedIdentifierError
	assert.True(t, errors.As(idx.Add("[VID:42]", IssueRef{Number: 3}), &malformed))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, findings.ScanTypePipeline, idx.ScanType())
	assert.Equal(t, []FuzzyEntry{
		{Category: "80", Line: 10, Issue: IssueRef{Number: 1, State: "open"}},
		{Category: "89", Line: 30, Issue: IssueRef{Number: 2, State: "closed"}},
	}, idx.Entries("a.jsp"))
	assert.Empty(t, idx.Entries("b.jsp"))
}
