package findings

import (
	"encoding/json"
	"fmt"
)

type pipelineResults struct {
	Findings []pipelineFinding `json:"findings"`
}

type pipelineFinding struct {
	IssueID     int    `json:"issue_id"`
	IssueType   string `json:"issue_type"`
	CWEID       string `json:"cwe_id"`
	Severity    int    `json:"severity"`
	DisplayText string `json:"display_text"`
	Files       struct {
		SourceFile struct {
			File string `json:"file"`
			Line int    `json:"line"`
		} `json:"source_file"`
	} `json:"files"`
}

func parsePipeline(data []byte) (*ResultSet, error) {
	var res pipelineResults
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline scan results: %w", err)
	}

	set := &ResultSet{ScanType: ScanTypePipeline, Findings: make([]Finding, 0, len(res.Findings))}
	for _, f := range res.Findings {
		set.Findings = append(set.Findings, Finding{
			ScanType:     ScanTypePipeline,
			IssueID:      f.IssueID,
			Category:     f.CWEID,
			CategoryName: f.IssueType,
			File:         f.Files.SourceFile.File,
			FileName:     f.Files.SourceFile.File,
			Line:         f.Files.SourceFile.Line,
			Severity:     f.Severity,
			Title:        f.IssueType,
			Body:         decodeText(f.DisplayText),
		})
	}
	return set, nil
}
