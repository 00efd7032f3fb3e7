package importflaws

import (
	"fmt"
	"strings"
)

// validate validates the RunOptions for the import command.
func validate(o *RunOptions) error {
	if strings.TrimSpace(o.ResultsPath) == "" {
		return fmt.Errorf("--results is required")
	}
	if o.Namespace == "" {
		return fmt.Errorf("--namespace is required")
	}
	if o.Repository == "" {
		return fmt.Errorf("--repository is required")
	}
	if o.Token == "" && !o.DryRun {
		return fmt.Errorf("--token is required")
	}
	if o.PullRequest < 0 {
		return fmt.Errorf("--pr-number cannot be negative")
	}
	if o.WaitTime < 0 {
		return fmt.Errorf("--wait-time cannot be negative")
	}
	return nil
}
