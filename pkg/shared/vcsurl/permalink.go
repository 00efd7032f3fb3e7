package vcsurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Permalink builder errors
var (
	ErrMissingNamespace = errors.New("namespace is required")
	ErrMissingProject   = errors.New("project is required")
	ErrMissingRef       = errors.New("ref (branch, tag, or commit SHA) is required")
	ErrMissingFile      = errors.New("file path is required")
)

// DefaultWebURL is used when PermalinkParams.WebURL is empty.
const DefaultWebURL = "https://github.com"

// PermalinkParams holds parameters for building GitHub file permalinks.
type PermalinkParams struct {
	WebURL    string // Optional: scheme and host, defaults to https://github.com
	Namespace string
	Project   string
	Ref       string // Branch, tag, or commit SHA
	File      string // Repository-relative file path (forward slashes)
	StartLine int    // 1-based, 0 means no line anchor
	EndLine   int    // 1-based, 0 or equal to StartLine means single line
}

// validatePermalinkParams checks that all required parameters are present.
func validatePermalinkParams(p PermalinkParams) error {
	if p.Namespace == "" {
		return ErrMissingNamespace
	}
	if p.Project == "" {
		return ErrMissingProject
	}
	if p.Ref == "" {
		return ErrMissingRef
	}
	if p.File == "" {
		return ErrMissingFile
	}
	return nil
}

// normalizeFilePath converts backslashes to forward slashes and trims leading slashes.
func normalizeFilePath(file string) string {
	return strings.TrimLeft(strings.ReplaceAll(file, "\\", "/"), "/")
}

// escapeFilePath escapes each path segment, keeping the separators.
func escapeFilePath(file string) string {
	segments := strings.Split(file, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func webBase(webURL string) string {
	if webURL == "" {
		webURL = DefaultWebURL
	}
	return strings.TrimRight(webURL, "/")
}

// BuildPermalink generates a GitHub blob permalink:
// {web}/{ns}/{proj}/blob/{ref}/{file}#L{start}-L{end}
func BuildPermalink(p PermalinkParams) (string, error) {
	if err := validatePermalinkParams(p); err != nil {
		return "", err
	}

	file := escapeFilePath(normalizeFilePath(p.File))
	baseURL := fmt.Sprintf("%s/%s/%s/blob/%s/%s", webBase(p.WebURL), p.Namespace, p.Project, p.Ref, file)
	return baseURL + buildLineAnchor(p.StartLine, p.EndLine), nil
}

// LineWindow returns the range of radius lines around line, starting no earlier than line 1.
func LineWindow(line, radius int) (int, int) {
	start := line - radius
	if start < 1 {
		start = 1
	}
	return start, line + radius
}

// PullRequestURL returns the web URL of pull request number.
func PullRequestURL(webURL, namespace, project string, number int) string {
	return fmt.Sprintf("%s/%s/%s/pull/%d", webBase(webURL), namespace, project, number)
}

// buildLineAnchor returns #L{start} or #L{start}-L{end}, or empty string if startLine <= 0.
func buildLineAnchor(startLine, endLine int) string {
	if startLine <= 0 {
		return ""
	}

	// Normalize endLine: if not specified or less than start, treat as single line
	if endLine <= 0 || endLine < startLine {
		endLine = startLine
	}

	if endLine == startLine {
		return fmt.Sprintf("#L%d", startLine)
	}
	return fmt.Sprintf("#L%d-L%d", startLine, endLine)
}
