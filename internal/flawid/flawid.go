// Package flawid encodes and decodes the flaw identifiers embedded in issue titles.
//
// Pipeline findings use [VID:<cwe>:<file>:<line>], policy findings use [VID:<issue id>].
// The category is the first pipeline field and the line the last, so file paths may contain colons.
package flawid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scan-io-git/scanio-flaws/internal/findings"
)

const (
	prefix    = "[VID:"
	suffix    = "]"
	separator = ":"
)

// VID is a flaw identifier as it appears in an issue title, brackets included.
type VID string

func (v VID) String() string {
	return string(v)
}

// Fields holds the typed payload of a VID.
type Fields struct {
	Scheme    findings.ScanType
	Category  string
	File      string
	Line      int
	FindingID int
}

// MalformedIdentifierError reports a VID whose payload does not fit its scheme.
type MalformedIdentifierError struct {
	VID    VID
	Scheme findings.ScanType
	Reason string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed %s identifier %q: %s", e.Scheme, string(e.VID), e.Reason)
}

// Encode builds the identifier for f according to its scan type.
func Encode(f findings.Finding) VID {
	if f.ScanType == findings.ScanTypePolicy {
		return VID(fmt.Sprintf("%s%d%s", prefix, f.IssueID, suffix))
	}
	return VID(fmt.Sprintf("%s%s%s%s%s%d%s", prefix, f.Category, separator, f.File, separator, f.Line, suffix))
}

// Decode returns the first [VID:...] token in title.
// Free text and unrelated brackets before the marker are ignored.
func Decode(title string) (VID, bool) {
	start := strings.Index(title, prefix)
	if start < 0 {
		return "", false
	}
	end := strings.Index(title[start:], suffix)
	if end < 0 {
		return "", false
	}
	return VID(title[start : start+end+len(suffix)]), true
}

// SplitFields parses the payload of vid for the given scheme.
func SplitFields(vid VID, scheme findings.ScanType) (Fields, error) {
	s := string(vid)
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return Fields{}, malformed(vid, scheme, "missing "+prefix+" prefix")
	}
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(s, prefix), suffix), separator)

	switch scheme {
	case findings.ScanTypePipeline:
		if len(parts) < 3 {
			return Fields{}, malformed(vid, scheme, fmt.Sprintf("expected at least 3 fields, got %d", len(parts)))
		}
		category, last := parts[0], parts[len(parts)-1]
		file := strings.Join(parts[1:len(parts)-1], separator)
		if category == "" || file == "" {
			return Fields{}, malformed(vid, scheme, "empty category or file")
		}
		line, err := strconv.Atoi(last)
		if err != nil {
			return Fields{}, malformed(vid, scheme, fmt.Sprintf("line %q is not a number", last))
		}
		return Fields{Scheme: scheme, Category: category, File: file, Line: line}, nil
	case findings.ScanTypePolicy:
		if len(parts) != 1 {
			return Fields{}, malformed(vid, scheme, fmt.Sprintf("expected 1 field, got %d", len(parts)))
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return Fields{}, malformed(vid, scheme, fmt.Sprintf("finding id %q is not a number", parts[0]))
		}
		return Fields{Scheme: scheme, FindingID: id}, nil
	default:
		return Fields{}, malformed(vid, scheme, "unknown scheme")
	}
}

// Title appends the identifier of f to its description.
func Title(f findings.Finding) string {
	return f.Title + " " + string(Encode(f))
}

func malformed(vid VID, scheme findings.ScanType, reason string) error {
	return &MalformedIdentifierError{VID: vid, Scheme: scheme, Reason: reason}
}
