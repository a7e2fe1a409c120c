package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/difflens/difflens/internal/adapter/azdo"
	"github.com/difflens/difflens/internal/adapter/llm"
	"github.com/difflens/difflens/internal/adapter/llm/openai"
	"github.com/difflens/difflens/internal/adapter/llm/static"
	"github.com/difflens/difflens/internal/adapter/observability"
	"github.com/difflens/difflens/internal/adapter/output/text"
	"github.com/difflens/difflens/internal/adapter/repository"
	storeadapter "github.com/difflens/difflens/internal/adapter/store"
	"github.com/difflens/difflens/internal/adapter/store/sqlite"
	"github.com/difflens/difflens/internal/config"
	"github.com/difflens/difflens/internal/usecase/review"
)

// reviewCommand creates the review subcommand. With a pull request
// configured it reviews the named files against Azure DevOps; otherwise it
// runs against the local repository and prints what would have been posted.
func reviewCommand(cfg config.Config) *cobra.Command {
	var baseRef string
	var targetRef string
	var pullRequestID int
	var providerName string
	var model string
	var confidence float64
	var maxCalls int
	var noColor bool

	cmd := &cobra.Command{
		Use:   "review [files...]",
		Short: "Review changed lines between two refs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// CLI flags override config file values.
			if cmd.Flags().Changed("base") {
				cfg.Git.BaseRef = baseRef
			}
			if cmd.Flags().Changed("target") {
				cfg.Git.TargetRef = targetRef
			}
			if cmd.Flags().Changed("pr") {
				cfg.AzureDevOps.PullRequestID = pullRequestID
			}
			if cmd.Flags().Changed("provider") {
				cfg.Provider.Name = providerName
			}
			if cmd.Flags().Changed("model") {
				cfg.Provider.Model = model
			}
			if cmd.Flags().Changed("confidence") {
				cfg.Review.ConfidenceThreshold = confidence
			}
			if cmd.Flags().Changed("max-calls") {
				cfg.Review.MaxModelCalls = maxCalls
			}

			provider, err := buildProvider(cfg)
			if err != nil {
				return err
			}

			opts, err := reviewOptions(cfg)
			if err != nil {
				return err
			}

			var (
				svc   review.RepositoryService
				local *repository.Local
			)
			paths := args
			if cfg.AzureDevOps.PullRequestID > 0 {
				if err := validateAzureDevOps(cfg.AzureDevOps); err != nil {
					return err
				}
				client := azdo.NewClient(cfg.AzureDevOps.OrgURL, cfg.AzureDevOps.Project, cfg.AzureDevOps.Repository, cfg.AzureDevOps.Token)
				applyHTTPSettings(client, cfg.HTTP)
				svc = azdo.NewService(client, cfg.AzureDevOps.PullRequestID)
				opts.RunTarget = fmt.Sprintf("%s/%s#%d", cfg.AzureDevOps.Project, cfg.AzureDevOps.Repository, cfg.AzureDevOps.PullRequestID)
				if len(paths) == 0 {
					return fmt.Errorf("pull request mode needs the files to review; pass them as arguments")
				}
			} else {
				local = repository.NewLocal(cfg.Git.RepositoryDir)
				svc = local
				opts.RunTarget = fmt.Sprintf("%s@%s..%s", repositoryName(cfg.Git.RepositoryDir), opts.Base, opts.Target)
				if len(paths) == 0 {
					discovered, err := local.ChangedFiles(ctx, opts.Base, opts.Target)
					if err != nil {
						return fmt.Errorf("discover changed files: %w", err)
					}
					paths = discovered
				}
			}
			if len(paths) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changed files to review.")
				return nil
			}

			prompts := review.NewPromptBuilder(llm.EstimateTokens, cfg.Review.MaxPromptTokens)
			orch := review.NewOrchestrator(svc, provider, prompts, opts).
				WithLogger(buildLogger(cfg.Observability))

			if cfg.Store.Enabled {
				if runStore, cleanup := openRunStore(cmd.ErrOrStderr(), cfg.Store); runStore != nil {
					defer cleanup()
					orch.WithStore(runStore)
				}
			}

			result, err := orch.Run(ctx, paths)
			if err != nil {
				return err
			}

			renderer := text.NewRenderer(cmd.OutOrStdout(), !noColor && review.IsOutputTerminal())
			var comments []repository.PostedComment
			if local != nil {
				comments = local.Posted()
			}
			renderer.RenderRun(result, comments)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", "", "Base reference to diff against (overrides config)")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target reference to review (overrides config)")
	cmd.Flags().IntVar(&pullRequestID, "pr", 0, "Azure DevOps pull request ID (overrides config)")
	cmd.Flags().StringVar(&providerName, "provider", "", "Model provider: openai or static (overrides config)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (overrides config)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence threshold for findings (overrides config)")
	cmd.Flags().IntVar(&maxCalls, "max-calls", 0, "Maximum model calls for this run, 0 is unlimited (overrides config)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// reviewOptions maps configuration onto use case options.
func reviewOptions(cfg config.Config) (review.Options, error) {
	var maxAge time.Duration
	if cfg.Review.SummaryMaxAge != "" {
		parsed, err := time.ParseDuration(cfg.Review.SummaryMaxAge)
		if err != nil {
			return review.Options{}, fmt.Errorf("invalid review.summaryMaxAge %q: %w", cfg.Review.SummaryMaxAge, err)
		}
		maxAge = parsed
	}

	return review.Options{
		Base:                cfg.Git.BaseRef,
		Target:              cfg.Git.TargetRef,
		ConfidenceThreshold: cfg.Review.ConfidenceThreshold,
		ContextRadius:       cfg.Review.ContextRadius,
		MaxModelCalls:       cfg.Review.MaxModelCalls,
		ServiceMarker:       cfg.Review.ServiceMarker,
		SummaryMaxAge:       maxAge,
	}, nil
}

// buildProvider constructs the configured model provider.
func buildProvider(cfg config.Config) (review.Provider, error) {
	switch cfg.Provider.Name {
	case "", "openai":
		if cfg.Provider.APIKey == "" {
			return nil, fmt.Errorf("provider.apiKey is required for the openai provider (set it in the config or via DIFFLENS_PROVIDER_APIKEY)")
		}
		p := openai.NewProvider(cfg.Provider.APIKey, cfg.Provider.Model)
		client := p.Client()
		if cfg.Provider.BaseURL != "" {
			client.SetBaseURL(cfg.Provider.BaseURL)
		}
		if d, ok := parseConfigDuration(cfg.HTTP.Timeout); ok {
			client.SetTimeout(d)
		}
		if cfg.HTTP.MaxRetries > 0 {
			client.SetMaxRetries(cfg.HTTP.MaxRetries)
		}
		if d, ok := parseConfigDuration(cfg.HTTP.InitialBackoff); ok {
			client.SetInitialBackoff(d)
		}
		return p, nil
	case "static":
		return static.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: openai, static)", cfg.Provider.Name)
	}
}

// buildLogger maps logging configuration onto the observability adapter.
func buildLogger(cfg config.ObservabilityConfig) *observability.Logger {
	level := observability.LogLevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = observability.LogLevelDebug
	case "warning":
		level = observability.LogLevelWarning
	}

	format := observability.LogFormatHuman
	if cfg.Logging.Format == "json" {
		format = observability.LogFormatJSON
	}

	return observability.NewLogger(level, format)
}

// openRunStore opens the SQLite run store. Failures degrade to a nil store
// so a broken database never blocks a review.
func openRunStore(errWriter io.Writer, cfg config.StoreConfig) (review.RunStore, func()) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_, _ = fmt.Fprintf(errWriter, "warning: creating store directory failed: %v\n", err)
			return nil, nil
		}
	}

	st, err := sqlite.NewStore(cfg.Path)
	if err != nil {
		_, _ = fmt.Fprintf(errWriter, "warning: opening run store failed: %v\n", err)
		return nil, nil
	}
	return storeadapter.NewBridge(st), func() { _ = st.Close() }
}

func validateAzureDevOps(cfg config.AzureDevOpsConfig) error {
	switch {
	case cfg.OrgURL == "":
		return fmt.Errorf("azureDevOps.orgUrl is required in pull request mode")
	case cfg.Project == "":
		return fmt.Errorf("azureDevOps.project is required in pull request mode")
	case cfg.Repository == "":
		return fmt.Errorf("azureDevOps.repository is required in pull request mode")
	case cfg.Token == "":
		return fmt.Errorf("azureDevOps.token is required in pull request mode")
	}
	return nil
}

func applyHTTPSettings(client *azdo.Client, cfg config.HTTPConfig) {
	if d, ok := parseConfigDuration(cfg.Timeout); ok {
		client.SetTimeout(d)
	}
	if cfg.MaxRetries > 0 {
		client.SetMaxRetries(cfg.MaxRetries)
	}
	if d, ok := parseConfigDuration(cfg.InitialBackoff); ok {
		client.SetInitialBackoff(d)
	}
}

func parseConfigDuration(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func repositoryName(repoDir string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}
