package importflaws

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-flaws/internal/config"
	"github.com/scan-io-git/scanio-flaws/internal/findings"
	"github.com/scan-io-git/scanio-flaws/internal/importer"
	"github.com/scan-io-git/scanio-flaws/internal/labels"
	"github.com/scan-io-git/scanio-flaws/internal/logger"
	"github.com/scan-io-git/scanio-flaws/internal/pathrewrite"
	"github.com/scan-io-git/scanio-flaws/internal/template"
	"github.com/scan-io-git/scanio-flaws/internal/tracker"
	"github.com/scan-io-git/scanio-flaws/pkg/shared/errors"
	"github.com/scan-io-git/scanio-flaws/pkg/shared/httpclient"
)

// RunOptions holds flags for the import command.
type RunOptions struct {
	Namespace          string        `json:"namespace,omitempty"`
	Repository         string        `json:"repository,omitempty"`
	ResultsPath        string        `json:"results_path,omitempty"`
	SourceFolder       string        `json:"source_folder,omitempty"`
	Ref                string        `json:"ref,omitempty"`
	Token              string        `json:"-"`
	PathRewrites       []string      `json:"path_rewrites,omitempty"`
	PullRequest        int           `json:"pull_request,omitempty"`
	WaitTime           time.Duration `json:"wait_time,omitempty"`
	FailOnFlaw         bool          `json:"fail_on_flaw,omitempty"`
	DryRun             bool          `json:"dry_run,omitempty"`
	SkipLabelBootstrap bool          `json:"skip_label_bootstrap,omitempty"`
}

// RunSummary is attached to command errors and printed on success.
type RunSummary struct {
	RunID  string          `json:"run_id"`
	Result importer.Result `json:"result"`
}

var (
	AppConfig *config.Config
	opts      RunOptions

	exampleImportUsage = `  # Inside a GitHub Actions workflow (owner, repository, ref, token and pull request come from the environment)
  scanio-flaws import --results results.json

  # Pipeline scan results with explicit repository and path rewrites
  scanio-flaws import --results results.json --namespace octo --repository demo --token $TOKEN \
    --path-rewrite "com/acme/:src/main/java/com/acme/"

  # Policy scan results on a pull request, failing the build when anything new is reported
  scanio-flaws import --results policy.json --pr-number 12 --fail-on-flaw

  # Show what would be filed without touching the repository
  scanio-flaws import --results results.json --dry-run`

	// ImportCmd files GitHub issues for Veracode flaws.
	ImportCmd = &cobra.Command{
		Use:                   "import --results PATH [--namespace OWNER] [--repository REPO] [--token TOKEN] [--ref REF] [--path-rewrite OLD:NEW]... [--pr-number N] [--wait-time SECONDS|DURATION] [--fail-on-flaw] [--dry-run] [--skip-label-bootstrap]",
		Short:                 "Create GitHub issues for Veracode pipeline or policy scan flaws",
		Example:               exampleImportUsage,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		RunE:                  runImport,
	}
)

// Init wires config into this command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runImport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && cmd.Flags().NFlag() == 0 && lookupEnv("GITHUB_REPOSITORY") == "" {
		return cmd.Help()
	}

	lg, runID := logger.NewRunLogger(AppConfig, "import-flaws")
	summary := &RunSummary{RunID: runID}

	if err := resolvePaths(&opts); err != nil {
		lg.Error("invalid arguments", "error", err)
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: %w", err), errors.ExitInvalidArguments)
	}
	ApplyEnvironmentFallbacks(&opts, lookupEnv)
	ApplyGitMetadataFallbacks(&opts, lg)
	if !cmd.Flags().Changed("wait-time") && AppConfig.Importer.WaitTime != nil {
		opts.WaitTime = *AppConfig.Importer.WaitTime
	}

	if err := validate(&opts); err != nil {
		lg.Error("invalid arguments", "error", err)
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: %w", err), errors.ExitInvalidArguments)
	}

	rules, err := pathrewrite.ParseRules(opts.PathRewrites)
	if err != nil {
		lg.Error("invalid path rewrite rule", "error", err)
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: %w", err), errors.ExitInvalidArguments)
	}

	remediation, err := newRemediation(AppConfig.Remediation)
	if err != nil {
		lg.Error("invalid remediation template", "error", err)
		return errors.NewCommandError(opts, nil, err, errors.ExitInvalidArguments)
	}

	set, err := findings.ReadFile(opts.ResultsPath)
	if err != nil {
		lg.Error("failed to read scan results", "error", err, "path", opts.ResultsPath)
		return errors.NewCommandError(opts, nil, fmt.Errorf("failed to read scan results: %w", err), errors.ExitProcessingFailed)
	}
	lg.Info("scan results loaded", "scan_type", string(set.ScanType), "findings", len(set.Findings))

	ctx := cmd.Context()
	rc := httpclient.InitializeRestyClient(lg, AppConfig)
	gh, err := tracker.NewGitHubClient(httpclient.NewTokenClient(ctx, rc, opts.Token), AppConfig.GitHub, opts.Namespace, opts.Repository)
	if err != nil {
		lg.Error("failed to create GitHub client", "error", err)
		return errors.NewCommandError(opts, nil, err, errors.ExitInvalidArguments)
	}

	if !opts.SkipLabelBootstrap && !opts.DryRun {
		created, err := labels.Ensure(ctx, gh, lg)
		if err != nil {
			lg.Error("failed to bootstrap labels", "error", err)
			return errors.NewCommandError(opts, summary, err, errors.ExitProcessingFailed)
		}
		lg.Debug("labels ensured", "created", created)
	}

	driver := importer.New(gh, tracker.NewCreationClient(gh, remediation, lg), importer.Options{
		Owner:            opts.Namespace,
		Repository:       opts.Repository,
		Ref:              opts.Ref,
		WebURL:           AppConfig.GitHub.WebURL,
		PullRequest:      opts.PullRequest,
		PathRules:        rules,
		WaitTime:         opts.WaitTime,
		FuzzyWindow:      *AppConfig.Importer.FuzzyWindow,
		ProgressEvery:    AppConfig.Importer.ProgressEvery,
		ResolvedStatuses: AppConfig.Importer.ResolvedStatuses,
		DryRun:           opts.DryRun,
	}, lg)

	summary.Result, err = driver.Run(ctx, set)
	if err != nil {
		lg.Error("import failed", "error", err, "rate_limited", tracker.IsRateLimited(err))
		return errors.NewCommandError(opts, summary, fmt.Errorf("import failed: %w", err), errors.ExitProcessingFailed)
	}

	fmt.Println(formatSummary(summary.Result))

	if err := failOnFlaw(opts, summary); err != nil {
		lg.Warn("flaws reported, failing as requested", "error", err)
		return err
	}
	return nil
}

// failOnFlaw returns an ExitFlawsFound error when --fail-on-flaw is set and the run
// created or linked an issue, or left a finding unfiled because its identifier is malformed.
// A dry run never fails.
func failOnFlaw(o RunOptions, summary *RunSummary) error {
	if !o.FailOnFlaw || summary.Result.DryRun {
		return nil
	}
	reported := summary.Result.Mutations() + summary.Result.Malformed
	if reported == 0 {
		return nil
	}
	return errors.NewCommandError(o, summary, fmt.Errorf("%d flaw(s) reported", reported), errors.ExitFlawsFound)
}

// newRemediation returns nil only when the comment is disabled in config.
// Without a configured recipient the link opens a draft with an empty To field.
func newRemediation(cfg config.Remediation) (tracker.RemediationRenderer, error) {
	if cfg.Disabled {
		return nil, nil
	}
	return template.NewRemediation(cfg.Template, cfg.Mailto)
}

func formatSummary(r importer.Result) string {
	prefix := ""
	if r.DryRun {
		prefix = "Dry run: "
	}
	return fmt.Sprintf("%sProcessed %d finding(s): created %d, linked %d, skipped %d, resolved %d, malformed %d",
		prefix, r.Processed, r.Created, r.Linked, r.Skipped, r.Resolved, r.Malformed)
}

func init() {
	ImportCmd.Flags().StringVar(&opts.ResultsPath, "results", "", "Path to a Veracode pipeline or policy scan results file")
	ImportCmd.Flags().StringVar(&opts.Namespace, "namespace", "", "GitHub owner (defaults to $GITHUB_REPOSITORY_OWNER, then the origin remote)")
	ImportCmd.Flags().StringVar(&opts.Repository, "repository", "", "Repository name (defaults to ${GITHUB_REPOSITORY#*/}, then the origin remote)")
	ImportCmd.Flags().StringVar(&opts.Token, "token", "", "GitHub token (defaults to $GITHUB_TOKEN)")
	ImportCmd.Flags().StringVar(&opts.Ref, "ref", "", "Commit SHA for source permalinks (defaults to $GITHUB_SHA, then HEAD)")
	ImportCmd.Flags().StringVar(&opts.SourceFolder, "source-folder", "", "Optional: checkout used to detect ref and repository (defaults to the working directory)")
	// --path-rewrite keeps commas intact, repeat the flag for several rules
	ImportCmd.Flags().StringArrayVar(&opts.PathRewrites, "path-rewrite", nil, "Rewrite reported paths for permalinks, as OLD:NEW (repeatable, first match wins)")
	ImportCmd.Flags().IntVar(&opts.PullRequest, "pr-number", 0, "Pull request to link duplicates and new issues to (defaults to the number in $GITHUB_REF)")
	ImportCmd.Flags().Var(newWaitTimeValue(config.DefaultWaitTime, &opts.WaitTime), "wait-time", "Delay after every issue or comment created, in seconds or as a duration such as 1500ms (overrides importer.wait_time)")
	ImportCmd.Flags().BoolVar(&opts.FailOnFlaw, "fail-on-flaw", false, "Exit with code 3 when any issue was created or linked")
	ImportCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Log decisions without creating issues, comments or labels")
	ImportCmd.Flags().BoolVar(&opts.SkipLabelBootstrap, "skip-label-bootstrap", false, "Do not create missing severity and scan-type labels")
	ImportCmd.Flags().BoolP("help", "h", false, "Show help for import command.")
	ImportCmd.Flags().SetNormalizeFunc(normalizeFlagName)
}
