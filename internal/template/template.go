package template

import (
	"fmt"
	"net/url"
	"strings"
	"text/template"
)

// RemediationData is passed to the remediation comment template.
type RemediationData struct {
	Mailto  string
	CWE     string
	File    string
	Line    int
	Subject string
	Body    string
}

// Remediation renders the comment attached to every created issue.
type Remediation struct {
	tmpl   *template.Template
	mailto string
}

// mailtoEscape query-escapes s for a mailto URI, where '+' is not read as a space.
// helper function for the remediation template
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// cweLink returns the MITRE definition page for a CWE id.
// helper function for the remediation template
func cweLink(id string) string {
	return fmt.Sprintf("https://cwe.mitre.org/data/definitions/%s.html", url.PathEscape(id))
}

// NewRemediation parses text as a text/template.
func NewRemediation(text, mailto string) (*Remediation, error) {
	tmpl, err := template.New("remediation").
		Funcs(template.FuncMap{
			"mailtoescape": mailtoEscape,
			"cwelink":      cweLink,
		}).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remediation template: %w", err)
	}
	return &Remediation{tmpl: tmpl, mailto: mailto}, nil
}

// Render builds the comment for a flaw in file at line.
func (r *Remediation) Render(cwe, file string, line int) (string, error) {
	data := RemediationData{
		Mailto:  r.mailto,
		CWE:     cwe,
		File:    file,
		Line:    line,
		Subject: fmt.Sprintf("Remediation guidance for CWE-%s", cwe),
		Body:    fmt.Sprintf("CWE: %s\nFile: %s\nLine: %d", cwe, file, line),
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render remediation comment: %w", err)
	}
	return sb.String(), nil
}
