package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ErrShouldReview is returned when no skip trigger is found,
// indicating the review should proceed. Use this as a sentinel
// error in pipeline scripting.
var ErrShouldReview = errors.New("should review")

// skipTriggers are matched case-insensitively anywhere in the text.
var skipTriggers = []string{
	"[skip review]",
	"[skip-review]",
}

// checkSkipCommand creates the check-skip subcommand.
// This command checks commit messages and PR metadata for skip triggers.
//
// Exit codes:
//   - 0: Skip trigger found, review should be skipped
//   - 1: No skip trigger, review should proceed
func checkSkipCommand() *cobra.Command {
	var commitMessages []string
	var prTitle string
	var prDescription string

	cmd := &cobra.Command{
		Use:   "check-skip",
		Short: "Check if the review should be skipped",
		Long: `Check commit messages and PR metadata for skip triggers.

Supported skip trigger patterns:
  [skip review]
  [skip-review]

Patterns are case-insensitive and can appear anywhere in the text.

Exit codes:
  0 - Skip trigger found, review should be skipped
  1 - No skip trigger, review should proceed

Example usage in a pipeline:
  if difflens check-skip --commit-message "$COMMIT_MESSAGE"; then
    echo "Skipping review"
    exit 0
  fi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, msg := range commitMessages {
				if containsSkipTrigger(msg) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "skip: commit message")
					return nil
				}
			}
			if containsSkipTrigger(prTitle) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "skip: PR title")
				return nil
			}
			if containsSkipTrigger(prDescription) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "skip: PR description")
				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "review: no skip trigger found")
			return ErrShouldReview // Exit 1
		},
	}

	cmd.Flags().StringArrayVar(&commitMessages, "commit-message", nil, "Commit message(s) to check (can be repeated)")
	cmd.Flags().StringVar(&prTitle, "pr-title", "", "PR title to check")
	cmd.Flags().StringVar(&prDescription, "pr-description", "", "PR description/body to check")

	return cmd
}

func containsSkipTrigger(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range skipTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
