// Package labels defines the severity and scan-type labels put on imported issues.
package labels

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-flaws/internal/findings"
)

// Label is a tracker label definition.
type Label struct {
	Name        string
	Color       string
	Description string
}

// severityLabels is ordered from the highest severity down; the index is 5 - severity.
var severityLabels = []Label{
	{Name: "Severity: Very High", Color: "A90533", Description: "A Veracode flaw, Very High severity"},
	{Name: "Severity: High", Color: "DD3B35", Description: "A Veracode flaw, High severity"},
	{Name: "Severity: Medium", Color: "FF7D00", Description: "A Veracode flaw, Medium severity"},
	{Name: "Severity: Low", Color: "FFBE00", Description: "A Veracode flaw, Low severity"},
	{Name: "Severity: Very Low", Color: "33ADD2", Description: "A Veracode flaw, Very Low severity"},
	{Name: "Severity: Informational", Color: "0270D3", Description: "A Veracode flaw, Informational severity"},
}

var scanTypeLabels = map[findings.ScanType]Label{
	findings.ScanTypePipeline: {Name: "Veracode Pipeline Scan", Color: "0AA2DC", Description: "A Veracode flaw found by a pipeline scan"},
	findings.ScanTypePolicy:   {Name: "Veracode Policy Scan", Color: "0AA2DC", Description: "A Veracode flaw found by a policy scan"},
}

const (
	maxSeverity = 5
	minSeverity = 0
)

// SeverityLabel returns the label for a Veracode severity, clamped to 0..5.
func SeverityLabel(severity int) Label {
	if severity > maxSeverity {
		severity = maxSeverity
	}
	if severity < minSeverity {
		severity = minSeverity
	}
	return severityLabels[maxSeverity-severity]
}

// SeverityNames lists severity label names, highest first.
func SeverityNames() []string {
	names := make([]string, 0, len(severityLabels))
	for _, l := range severityLabels {
		names = append(names, l.Name)
	}
	return names
}

// ScanTypeLabel returns the label marking issues of the given scan type.
func ScanTypeLabel(t findings.ScanType) (Label, error) {
	l, ok := scanTypeLabels[t]
	if !ok {
		return Label{}, fmt.Errorf("no label for scan type %q", t)
	}
	return l, nil
}

// All returns every label the importer may apply.
func All() []Label {
	all := append([]Label(nil), severityLabels...)
	return append(all, scanTypeLabels[findings.ScanTypePipeline], scanTypeLabels[findings.ScanTypePolicy])
}

// LabelAPI is the subset of the tracker used to bootstrap labels.
type LabelAPI interface {
	ListLabels(ctx context.Context, page int) ([]Label, int, error)
	CreateLabel(ctx context.Context, label Label) error
}

// Ensure creates every label from All that the repository does not have yet.
// It returns the number of labels created.
func Ensure(ctx context.Context, api LabelAPI, lg hclog.Logger) (int, error) {
	existing := make(map[string]bool)
	for page := 1; page != 0; {
		batch, next, err := api.ListLabels(ctx, page)
		if err != nil {
			return 0, fmt.Errorf("failed to list labels: %w", err)
		}
		for _, l := range batch {
			existing[l.Name] = true
		}
		if len(batch) == 0 {
			break
		}
		page = next
	}

	created := 0
	for _, l := range All() {
		if existing[l.Name] {
			continue
		}
		if err := api.CreateLabel(ctx, l); err != nil {
			return created, fmt.Errorf("failed to create label %q: %w", l.Name, err)
		}
		lg.Debug("label created", "label", l.Name)
		created++
	}
	return created, nil
}
