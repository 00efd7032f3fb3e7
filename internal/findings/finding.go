// Package findings decodes Veracode result files into normalized findings.
package findings

import (
	"fmt"
	"net/url"
	"strings"
)

// ScanType selects the identifier scheme and matching strategy.
type ScanType string

const (
	ScanTypePipeline ScanType = "pipeline"
	ScanTypePolicy   ScanType = "policy"
)

// Finding is one normalized scan result. Findings are never mutated after parsing.
type Finding struct {
	ScanType ScanType
	// IssueID is the id issued by the scan source.
	IssueID int
	// Category is the CWE id as text, e.g. "80".
	Category     string
	CategoryName string
	// FindingCategory is the policy-scan category name, empty for pipeline results.
	FindingCategory  string
	File             string
	FileName         string
	Line             int
	Severity         int
	Title            string
	Body             string
	ResolutionStatus string
}

// ResultSet is the parsed content of one results file.
type ResultSet struct {
	ScanType ScanType
	Findings []Finding
}

// UnrecognizedInputFormatError is returned when neither discriminator key is present.
type UnrecognizedInputFormatError struct {
	Keys []string
}

func (e *UnrecognizedInputFormatError) Error() string {
	if len(e.Keys) == 0 {
		return "unrecognized input format: no top-level keys"
	}
	return fmt.Sprintf("unrecognized input format: expected %q or %q, found keys [%s]",
		pipelineDiscriminator, policyDiscriminator, strings.Join(e.Keys, ", "))
}

// decodeText undoes percent-encoding in scan descriptions, keeping the raw text when it is not valid.
func decodeText(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
