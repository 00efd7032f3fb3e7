package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	importflaws "github.com/scan-io-git/scanio-flaws/cmd/import-flaws"
	"github.com/scan-io-git/scanio-flaws/cmd/version"
	"github.com/scan-io-git/scanio-flaws/internal/config"
	"github.com/scan-io-git/scanio-flaws/pkg/shared/errors"
)

const configEnv = "SCANIO_FLAWS_CONFIG"

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "scanio-flaws [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Scanio-flaws files Veracode scan flaws as GitHub issues.",
		Long: `Scanio-flaws imports Veracode pipeline and policy scan results into GitHub issues.
	Flaws that already have an open issue are not filed again, and on pull requests
	the existing issue is linked to the pull request instead.
	`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $"+configEnv+" or "+config.DefaultConfigFile+")")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(importflaws.ImportCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
	}
	return errors.ExitCode(err)
}

func initConfig(cmd *cobra.Command, args []string) error {
	path, explicit := resolveConfigPath(cfgFile, os.Getenv(configEnv))

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return errors.NewCommandError(nil, nil, err, errors.ExitInvalidArguments)
	}
	if err := config.Validate(cfg); err != nil {
		return errors.NewCommandError(nil, nil, err, errors.ExitInvalidArguments)
	}

	AppConfig = cfg
	importflaws.Init(AppConfig)
	return nil
}

// resolveConfigPath prefers the flag over the environment and reports whether the path was given explicitly.
func resolveConfigPath(flagValue, envValue string) (string, bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if envValue != "" {
		return envValue, true
	}
	return config.DefaultConfigFile, false
}
