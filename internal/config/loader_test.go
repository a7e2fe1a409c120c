package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Review.ConfidenceThreshold)
	assert.Equal(t, 2, cfg.Review.ContextRadius)
	assert.Equal(t, "24h", cfg.Review.SummaryMaxAge)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, "60s", cfg.HTTP.Timeout)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "main", cfg.Git.BaseRef)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
review:
  confidenceThreshold: 0.8
  maxModelCalls: 5
azureDevOps:
  orgUrl: https://dev.azure.com/acme
  project: platform
  repository: api
  pullRequestId: 42
provider:
  name: static
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "difflens.yaml"), []byte(content), 0o600))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Review.ConfidenceThreshold)
	assert.Equal(t, 5, cfg.Review.MaxModelCalls)
	assert.Equal(t, 42, cfg.AzureDevOps.PullRequestID)
	assert.Equal(t, "platform", cfg.AzureDevOps.Project)
	assert.Equal(t, "static", cfg.Provider.Name)
	// Untouched settings keep defaults.
	assert.Equal(t, 2, cfg.Review.ContextRadius)
}

func TestLoad_ExpandsEnvVarsInSecrets(t *testing.T) {
	dir := t.TempDir()
	content := `
azureDevOps:
  token: ${TEST_AZDO_TOKEN}
provider:
  apiKey: $TEST_MODEL_KEY
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "difflens.yaml"), []byte(content), 0o600))

	t.Setenv("TEST_AZDO_TOKEN", "pat-secret")
	t.Setenv("TEST_MODEL_KEY", "sk-secret")

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "pat-secret", cfg.AzureDevOps.Token)
	assert.Equal(t, "sk-secret", cfg.Provider.APIKey)
}

func TestLoad_UnsetEnvVarLeftVisible(t *testing.T) {
	dir := t.TempDir()
	content := "azureDevOps:\n  token: ${DEFINITELY_UNSET_VAR_9Z}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "difflens.yaml"), []byte(content), 0o600))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_UNSET_VAR_9Z}", cfg.AzureDevOps.Token)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "difflens.yaml"), []byte(":\tnot yaml"), 0o600))

	_, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	assert.Error(t, err)
}

func TestExpandEnvString(t *testing.T) {
	t.Setenv("EXPAND_TEST_VAL", "value")

	assert.Equal(t, "", expandEnvString(""))
	assert.Equal(t, "plain", expandEnvString("plain"))
	assert.Equal(t, "value", expandEnvString("${EXPAND_TEST_VAL}"))
	assert.Equal(t, "value", expandEnvString("$EXPAND_TEST_VAL"))
	assert.Equal(t, "pre-value-post", expandEnvString("pre-${EXPAND_TEST_VAL}-post"))
}
