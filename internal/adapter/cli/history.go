package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/difflens/difflens/internal/adapter/output/text"
	"github.com/difflens/difflens/internal/adapter/store/sqlite"
	"github.com/difflens/difflens/internal/config"
	"github.com/difflens/difflens/internal/usecase/review"
)

// historyCommand creates the history subcommand listing recorded runs.
func historyCommand(cfg config.Config) *cobra.Command {
	var limit int
	var noColor bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded review runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.Store.Enabled {
				return fmt.Errorf("run history is disabled (store.enabled: false)")
			}

			st, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer func() { _ = st.Close() }()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			renderer := text.NewRenderer(cmd.OutOrStdout(), !noColor && review.IsOutputTerminal())
			renderer.RenderHistory(runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to show")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
