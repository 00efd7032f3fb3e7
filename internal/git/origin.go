package git

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gitsight/go-vcsurl"
)

// scpLike matches remotes written as user@host:path.
var scpLike = regexp.MustCompile(`^[\w.-]+@([\w.-]+):(.+)$`)

// Origin is the owner and repository of a remote.
type Origin struct {
	Host       string
	Owner      string
	Repository string
}

// ParseOrigin extracts the owner and repository from a remote URL.
// HTTPS, ssh:// and scp-like remotes are accepted.
func ParseOrigin(remoteURL string) (*Origin, error) {
	raw, err := normalizeRemote(remoteURL)
	if err != nil {
		return nil, err
	}

	info, err := vcsurl.Parse(raw)
	if err != nil {
		// Enterprise hosts are not known to vcsurl; fall back to the owner/repo path.
		return originFromPath(raw, remoteURL)
	}
	if info.Username == "" || info.Name == "" {
		return nil, fmt.Errorf("remote url %q has no owner or repository", remoteURL)
	}

	return &Origin{
		Host:       string(info.Host),
		Owner:      info.Username,
		Repository: info.Name,
	}, nil
}

// normalizeRemote rewrites any remote form to https://host/path without a .git suffix.
func normalizeRemote(remoteURL string) (string, error) {
	raw := strings.TrimSpace(remoteURL)
	if raw == "" {
		return "", fmt.Errorf("remote url is empty")
	}

	if m := scpLike.FindStringSubmatch(raw); m != nil && !strings.Contains(raw, "://") {
		raw = fmt.Sprintf("https://%s/%s", m[1], m[2])
	} else if strings.HasPrefix(raw, "ssh://") || strings.HasPrefix(raw, "git://") || strings.HasPrefix(raw, "http://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("failed to parse remote url %q: %w", remoteURL, err)
		}
		raw = "https://" + u.Hostname() + u.Path
	}

	return strings.TrimSuffix(strings.TrimSuffix(raw, "/"), ".git"), nil
}

func originFromPath(raw, remoteURL string) (*Origin, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote url %q: %w", remoteURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("remote url %q has no owner or repository", remoteURL)
	}
	return &Origin{Host: u.Hostname(), Owner: parts[0], Repository: parts[1]}, nil
}
