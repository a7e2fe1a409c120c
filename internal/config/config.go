// Package config loads application configuration from files and the
// environment.
package config

// Config represents the full application configuration.
type Config struct {
	AzureDevOps   AzureDevOpsConfig   `yaml:"azureDevOps"`
	Provider      ProviderConfig      `yaml:"provider"`
	HTTP          HTTPConfig          `yaml:"http"`
	Review        ReviewConfig        `yaml:"review"`
	Git           GitConfig           `yaml:"git"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AzureDevOpsConfig locates the pull request to review. Token normally
// points at an environment variable, e.g. "${AZDO_TOKEN}".
type AzureDevOpsConfig struct {
	OrgURL        string `yaml:"orgUrl"`
	Project       string `yaml:"project"`
	Repository    string `yaml:"repository"`
	PullRequestID int    `yaml:"pullRequestId"`
	Token         string `yaml:"token"`
}

// ProviderConfig configures the language model provider.
type ProviderConfig struct {
	// Name selects the provider: "openai" or "static".
	Name    string `yaml:"name"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// ReviewConfig tunes the review pass.
type ReviewConfig struct {
	// ConfidenceThreshold drops findings below it before reconciliation.
	ConfidenceThreshold float64 `yaml:"confidenceThreshold"`

	// ContextRadius is the unchanged-line padding around changed blocks.
	ContextRadius int `yaml:"contextRadius"`

	// MaxModelCalls bounds model invocations per run; 0 means unlimited.
	MaxModelCalls int `yaml:"maxModelCalls"`

	// MaxPromptTokens bounds the rendered prompt size.
	MaxPromptTokens int `yaml:"maxPromptTokens"`

	// ServiceMarker identifies the automated reviewer in comment authorship.
	ServiceMarker string `yaml:"serviceMarker"`

	// SummaryMaxAge is how recent an existing run summary must be to skip
	// posting a new one, e.g. "24h".
	SummaryMaxAge string `yaml:"summaryMaxAge"`
}

// GitConfig configures local mode.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
	BaseRef       string `yaml:"baseRef"`
	TargetRef     string `yaml:"targetRef"`
}

// StoreConfig configures the run-history store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warning
	Format string `yaml:"format"` // human, json
}
