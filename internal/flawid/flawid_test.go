package flawid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-flaws/internal/findings"
)

func TestEncode(t *testing.T) {
	pipeline := findings.Finding{ScanType: findings.ScanTypePipeline, Category: "89", File: "com/x/Dao.java", Line: 42, IssueID: 7}
	policy := findings.Finding{ScanType: findings.ScanTypePolicy, IssueID: 42, Category: "117", File: "a.java", Line: 3}

	assert.Equal(t, VID("[VID:89:com/x/Dao.java:42]"), Encode(pipeline))
	assert.Equal(t, VID("[VID:42]"), Encode(policy))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		title  string
		want   VID
		wantOK bool
	}{
		{title: "SQL Injection [VID:89:com/x/Dao.java:42]", want: "[VID:89:com/x/Dao.java:42]", wantOK: true},
		{title: "Improper Output Neutralization ('CRLF Injection') [VID:42]", want: "[VID:42]", wantOK: true},
		{title: "[triage] [needs-owner] Hard-coded key [VID:7] [VID:8]", want: "[VID:7]", wantOK: true},
		{title: "[VIDEO] CRLF Injection [VID:42]", want: "[VID:42]", wantOK: true},
		{title: "[VIDEO] stream [VID42]", wantOK: false},
		{title: "Manually filed issue", wantOK: false},
		{title: "Broken [VID:42", wantOK: false},
		{title: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, ok := Decode(tt.title)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name    string
		vid     VID
		scheme  findings.ScanType
		want    Fields
		wantErr bool
	}{
		{name: "pipeline", vid: "[VID:89:src/a.c:12]", scheme: findings.ScanTypePipeline,
			want: Fields{Scheme: findings.ScanTypePipeline, Category: "89", File: "src/a.c", Line: 12}},
		{name: "policy", vid: "[VID:420]", scheme: findings.ScanTypePolicy,
			want: Fields{Scheme: findings.ScanTypePolicy, FindingID: 420}},
		{name: "pipeline too few", vid: "[VID:89:12]", scheme: findings.ScanTypePipeline, wantErr: true},
		{name: "pipeline colon in file", vid: "[VID:89:C:/src/a.c:12]", scheme: findings.ScanTypePipeline,
			want: Fields{Scheme: findings.ScanTypePipeline, Category: "89", File: "C:/src/a.c", Line: 12}},
		{name: "pipeline several colons in file", vid: "[VID:80:lib/a:b:c.js:7]", scheme: findings.ScanTypePipeline,
			want: Fields{Scheme: findings.ScanTypePipeline, Category: "80", File: "lib/a:b:c.js", Line: 7}},
		{name: "pipeline empty category", vid: "[VID::a.c:12]", scheme: findings.ScanTypePipeline, wantErr: true},
		{name: "pipeline bad line", vid: "[VID:89:a.c:twelve]", scheme: findings.ScanTypePipeline, wantErr: true},
		{name: "pipeline empty file", vid: "[VID:89::12]", scheme: findings.ScanTypePipeline, wantErr: true},
		{name: "policy composite", vid: "[VID:89:a.c:12]", scheme: findings.ScanTypePolicy, wantErr: true},
		{name: "policy not numeric", vid: "[VID:abc]", scheme: findings.ScanTypePolicy, wantErr: true},
		{name: "missing colon", vid: "[VID42]", scheme: findings.ScanTypePolicy, wantErr: true},
		{name: "unknown scheme", vid: "[VID:42]", scheme: "dynamic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitFields(tt.vid, tt.scheme)
			if tt.wantErr {
				var malformedErr *MalformedIdentifierError
				require.True(t, errors.As(err, &malformedErr), "expected MalformedIdentifierError, got %v", err)
				assert.Equal(t, tt.vid, malformedErr.VID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []findings.Finding{
		{ScanType: findings.ScanTypePipeline, Title: "XSS", Category: "80", File: "web/index.jsp", Line: 1},
		{ScanType: findings.ScanTypePipeline, Title: "Path [Traversal]", Category: "73", File: "com/x/Files.java", Line: 9001},
		{ScanType: findings.ScanTypePipeline, Title: "[VIDEO] Open Redirect", Category: "601", File: "src/a:b.c", Line: 5},
		{ScanType: findings.ScanTypePolicy, Title: "Hard-coded Password ('Credentials')", IssueID: 42},
		{ScanType: findings.ScanTypePolicy, Title: "CRLF", IssueID: 4},
	}

	for _, f := range cases {
		vid, ok := Decode(Title(f))
		require.True(t, ok)
		assert.Equal(t, Encode(f), vid)

		fields, err := SplitFields(vid, f.ScanType)
		require.NoError(t, err)
		if f.ScanType == findings.ScanTypePipeline {
			assert.Equal(t, f.Category, fields.Category)
			assert.Equal(t, f.File, fields.File)
			assert.Equal(t, f.Line, fields.Line)
		} else {
			assert.Equal(t, f.IssueID, fields.FindingID)
		}
	}
}
