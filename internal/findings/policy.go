package findings

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type policyResults struct {
	Embedded struct {
		Findings []policyFinding `json:"findings"`
	} `json:"_embedded"`
}

type policyFinding struct {
	IssueID       int    `json:"issue_id"`
	Description   string `json:"description"`
	FindingStatus struct {
		ResolutionStatus string `json:"resolution_status"`
	} `json:"finding_status"`
	FindingDetails struct {
		Severity int `json:"severity"`
		CWE      struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"cwe"`
		FindingCategory struct {
			Name string `json:"name"`
		} `json:"finding_category"`
		FilePath       string `json:"file_path"`
		FileName       string `json:"file_name"`
		FileLineNumber int    `json:"file_line_number"`
	} `json:"finding_details"`
}

func parsePolicy(data []byte) (*ResultSet, error) {
	var res policyResults
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse policy scan results: %w", err)
	}

	set := &ResultSet{ScanType: ScanTypePolicy, Findings: make([]Finding, 0, len(res.Embedded.Findings))}
	for _, f := range res.Embedded.Findings {
		d := f.FindingDetails
		set.Findings = append(set.Findings, Finding{
			ScanType:         ScanTypePolicy,
			IssueID:          f.IssueID,
			Category:         strconv.Itoa(d.CWE.ID),
			CategoryName:     d.CWE.Name,
			FindingCategory:  d.FindingCategory.Name,
			File:             d.FilePath,
			FileName:         d.FileName,
			Line:             d.FileLineNumber,
			Severity:         d.Severity,
			Title:            fmt.Sprintf("%s ('%s')", d.CWE.Name, d.FindingCategory.Name),
			Body:             decodeText(f.Description),
			ResolutionStatus: f.FindingStatus.ResolutionStatus,
		})
	}
	return set, nil
}
