// Package ci reads GitHub Actions metadata from the environment.
package ci

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CIKind represents the type of CI.
type CIKind int

const (
	// CIUnknown indicates the CI provider could not be identified.
	CIUnknown CIKind = iota
	// CIGitHub identifies GitHub Actions.
	CIGitHub
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// CIEnvironment captures canonical CI metadata derived from environment variables.
type CIEnvironment struct {
	Kind               CIKind // Kind identifies the CI provider.
	CI                 bool   // CI reports whether the execution runs inside a CI environment.
	Token              string // Token is the workflow token, when exported to the step.
	CommitHash         string // CommitHash is the tip commit that triggered the job.
	VCSServerURL       string // VCSServerURL is the scheme and host of the VCS server.
	Reference          string // Reference is the fully qualified git reference (e.g. refs/pull/12/merge).
	ReferenceName      string // ReferenceName is the short reference or branch name.
	RepositoryName     string // RepositoryName is the repository slug without namespace.
	RepositoryFullName string // RepositoryFullName is the namespace-qualified repository name.
	Namespace          string // Namespace is the owner or organization.
	PullRequest        int    // PullRequest is the pull request number of the run, 0 otherwise.
}

// String returns the human-readable string representation of a CIKind.
func (c CIKind) String() string {
	switch c {
	case CIGitHub:
		return "github"
	default:
		return "unknown"
	}
}

// DetectCIKind attempts to infer the CI provider from well-known environment variables.
func DetectCIKind() CIKind {
	return detectCIKindWithLookup(os.Getenv)
}

func detectCIKindWithLookup(lookup LookupFunc) CIKind {
	if lookup == nil {
		lookup = os.Getenv
	}
	if strings.EqualFold(lookup("GITHUB_ACTIONS"), "true") || lookup("GITHUB_REPOSITORY") != "" || lookup("GITHUB_SHA") != "" {
		return CIGitHub
	}
	return CIUnknown
}

// GetCIDefaultEnvVars returns CI environment variables for the provided kind using the process environment.
func GetCIDefaultEnvVars(kind CIKind) (CIEnvironment, error) {
	return GetCIEnvVars(kind, os.Getenv)
}

// GetCIEnvVars resolves CI environment variables with the supplied lookup function.
func GetCIEnvVars(kind CIKind, lookup LookupFunc) (CIEnvironment, error) {
	if lookup == nil {
		lookup = os.Getenv
	}

	switch kind {
	case CIGitHub:
		return extractGitHubVariables(lookup), nil
	default:
		return CIEnvironment{}, fmt.Errorf("unsupported ci kind: %s", kind)
	}
}

// extractGitHubVariables builds the CIEnvironment from GitHub-specific variables.
// See https://docs.github.com/en/actions/reference/workflows-and-actions/variables.
func extractGitHubVariables(lookup LookupFunc) CIEnvironment {
	ci, _ := strconv.ParseBool(lookup("CI"))

	fullName := lookup("GITHUB_REPOSITORY")
	namespace := lookup("GITHUB_REPOSITORY_OWNER")
	repoName := ""
	if i := strings.LastIndex(fullName, "/"); i >= 0 && i < len(fullName)-1 {
		repoName = fullName[i+1:]
		if namespace == "" {
			namespace = fullName[:i]
		}
	}

	return CIEnvironment{
		Kind:               CIGitHub,
		CI:                 ci,
		Token:              lookup("GITHUB_TOKEN"),
		CommitHash:         lookup("GITHUB_SHA"),
		VCSServerURL:       lookup("GITHUB_SERVER_URL"),
		Reference:          lookup("GITHUB_REF"),
		ReferenceName:      lookup("GITHUB_REF_NAME"),
		RepositoryName:     repoName,
		RepositoryFullName: fullName,
		Namespace:          namespace,
		PullRequest:        PullRequestNumber(lookup),
	}
}

// PullRequestNumber returns the pull request number encoded in GITHUB_REF
// (refs/pull/<n>/merge or refs/pull/<n>/head), or 0 when the run is not for a pull request.
func PullRequestNumber(lookup LookupFunc) int {
	if lookup == nil {
		lookup = os.Getenv
	}
	return parsePullRef(lookup("GITHUB_REF"))
}

func parsePullRef(ref string) int {
	parts := strings.Split(ref, "/")
	if len(parts) != 4 || parts[0] != "refs" || parts[1] != "pull" {
		return 0
	}
	if parts[3] != "merge" && parts[3] != "head" {
		return 0
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
