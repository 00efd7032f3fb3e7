package importflaws

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/scan-io-git/scanio-flaws/internal/ci"
	"github.com/scan-io-git/scanio-flaws/internal/git"
	"github.com/scan-io-git/scanio-flaws/pkg/shared/files"
)

func lookupEnv(key string) string {
	return os.Getenv(key)
}

// flagAliases maps the input names used by the Veracode GitHub action onto our flags.
var flagAliases = map[string]string{
	"owner":        "namespace",
	"repo":         "repository",
	"github-token": "token",
	"commit-hash":  "ref",
	"results-file": "results",
}

// normalizeFlagName accepts underscores in flag names and resolves aliases.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}

// waitTimeValue is a duration flag that also takes a bare integer as seconds,
// the unit the Veracode GitHub action uses for its wait-time input.
type waitTimeValue time.Duration

func newWaitTimeValue(val time.Duration, p *time.Duration) *waitTimeValue {
	*p = val
	return (*waitTimeValue)(p)
}

func (w *waitTimeValue) Set(s string) error {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		*w = waitTimeValue(time.Duration(secs) * time.Second)
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("expected seconds or a duration such as 1500ms, got %q", s)
	}
	*w = waitTimeValue(d)
	return nil
}

func (w *waitTimeValue) Type() string {
	return "duration"
}

func (w *waitTimeValue) String() string {
	return time.Duration(*w).String()
}

// resolvePaths expands ~ and makes the results and source paths absolute.
func resolvePaths(opts *RunOptions) error {
	results, err := files.ResolvePath(opts.ResultsPath)
	if err != nil {
		return err
	}
	source, err := files.ResolvePath(opts.SourceFolder)
	if err != nil {
		return err
	}
	opts.ResultsPath, opts.SourceFolder = results, source
	return nil
}

// ApplyEnvironmentFallbacks fills unset options from the GitHub Actions environment.
func ApplyEnvironmentFallbacks(opts *RunOptions, lookup ci.LookupFunc) {
	env, err := ci.GetCIEnvVars(ci.CIGitHub, lookup)
	if err != nil {
		return
	}

	if strings.TrimSpace(opts.Namespace) == "" && env.Namespace != "" {
		opts.Namespace = env.Namespace
	}
	if strings.TrimSpace(opts.Repository) == "" {
		if env.RepositoryName != "" {
			opts.Repository = env.RepositoryName
		} else if env.RepositoryFullName != "" {
			// No slash present; fall back to the whole value
			opts.Repository = env.RepositoryFullName
		}
	}
	if strings.TrimSpace(opts.Ref) == "" && env.CommitHash != "" {
		opts.Ref = env.CommitHash
	}
	if strings.TrimSpace(opts.Token) == "" && env.Token != "" {
		opts.Token = env.Token
	}
	if opts.PullRequest <= 0 {
		opts.PullRequest = env.PullRequest
	}
}

// ApplyGitMetadataFallbacks fills options still unset from the local checkout.
func ApplyGitMetadataFallbacks(opts *RunOptions, logger hclog.Logger) {
	if opts.Namespace != "" && opts.Repository != "" && opts.Ref != "" {
		return
	}

	baseFolder := strings.TrimSpace(opts.SourceFolder)
	if baseFolder == "" {
		cwd, err := os.Getwd()
		if err != nil {
			logger.Debug("failed to get current working directory for git metadata extraction", "error", err)
			return
		}
		baseFolder = cwd
	}

	md, err := git.CollectRepositoryMetadata(baseFolder)
	if err != nil {
		logger.Debug("unable to collect git repository metadata", "error", err, "baseFolder", baseFolder)
		return
	}

	remote := valueOrEmpty(md.RemoteURL)
	if md.Origin != nil {
		if strings.TrimSpace(opts.Namespace) == "" {
			opts.Namespace = md.Origin.Owner
			logger.Debug("auto-detected namespace from git metadata", "namespace", opts.Namespace, "remote", remote)
		}
		if strings.TrimSpace(opts.Repository) == "" {
			opts.Repository = md.Origin.Repository
			logger.Debug("auto-detected repository from git metadata", "repository", opts.Repository, "remote", remote)
		}
	} else if remote != "" {
		logger.Debug("origin remote does not name a repository", "remote", remote)
	}
	if strings.TrimSpace(opts.Ref) == "" && md.CommitHash != nil {
		opts.Ref = *md.CommitHash
		logger.Debug("auto-detected ref from git metadata", "ref", opts.Ref, "branch", valueOrEmpty(md.BranchName))
	}
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
