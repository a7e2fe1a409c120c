package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/difflens/difflens/internal/adapter/cli"
	"github.com/difflens/difflens/internal/adapter/store/sqlite"
	"github.com/difflens/difflens/internal/config"
	"github.com/difflens/difflens/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func commitAll(t *testing.T, wt *goGit.Worktree, msg string, files ...string) {
	t.Helper()
	for _, f := range files {
		if _, err := wt.Add(f); err != nil {
			t.Fatalf("add %s: %v", f, err)
		}
	}
	sig := &object.Signature{
		Name:  "Tester",
		Email: "tester@example.com",
		When:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if _, err := wt.Commit(msg, &goGit.CommitOptions{Author: sig}); err != nil {
		t.Fatalf("commit %q: %v", msg, err)
	}
}

// twoBranchRepo builds a repo where feature modifies main.go relative to
// master.
func twoBranchRepo(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()

	repo, err := goGit.PlainInit(tmp, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	writeFile(t, tmp, "main.go", "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n")
	commitAll(t, wt, "initial", "main.go")

	if err := wt.Checkout(&goGit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}

	writeFile(t, tmp, "main.go", "package main\n\nfunc main() {\n\tprintln(\"feature\")\n}\n")
	commitAll(t, wt, "feature change", "main.go")

	return tmp
}

func localConfig(repoDir string) config.Config {
	var cfg config.Config
	cfg.Provider.Name = "static"
	cfg.Git.RepositoryDir = repoDir
	cfg.Git.BaseRef = "master"
	cfg.Git.TargetRef = "feature"
	return cfg
}

func TestVersionFlagEmitsVersion(t *testing.T) {
	buf := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Dependencies{
		Args:    cli.Arguments{OutWriter: buf, ErrWriter: io.Discard},
		Version: "v9.9.9",
	})

	root.SetArgs([]string{"--version"})
	err := root.Execute()
	if !errors.Is(err, cli.ErrVersionRequested) {
		t.Fatalf("expected version sentinel, got %v", err)
	}
	if strings.TrimSpace(buf.String()) != "v9.9.9" {
		t.Fatalf("unexpected version output: %q", buf.String())
	}
}

func TestReviewCommand_LocalRun(t *testing.T) {
	buf := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Dependencies{
		Config: localConfig(twoBranchRepo(t)),
		Args:   cli.Arguments{OutWriter: buf, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review", "--no-color"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "done main.go: 1 finding(s)") {
		t.Errorf("expected a finding for main.go, got:\n%s", out)
	}
	if !strings.Contains(out, "Code Review Summary") {
		t.Errorf("expected the run summary in local output, got:\n%s", out)
	}
	if !strings.Contains(out, "Reviewed with 1 model call(s)") {
		t.Errorf("expected model call count, got:\n%s", out)
	}
}

func TestReviewCommand_ExplicitUnchangedFileSkipped(t *testing.T) {
	buf := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Dependencies{
		Config: localConfig(twoBranchRepo(t)),
		Args:   cli.Arguments{OutWriter: buf, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review", "--no-color", "absent.go"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if !strings.Contains(buf.String(), "skip absent.go (no changed lines)") {
		t.Errorf("expected unchanged file skip, got:\n%s", buf.String())
	}
}

func TestReviewCommand_PullRequestModeNeedsFiles(t *testing.T) {
	cfg := localConfig(t.TempDir())
	cfg.AzureDevOps = config.AzureDevOpsConfig{
		OrgURL:        "https://dev.azure.com/acme",
		Project:       "platform",
		Repository:    "api",
		PullRequestID: 7,
		Token:         "pat",
	}
	root := cli.NewRootCommand(cli.Dependencies{
		Config: cfg,
		Args:   cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "files to review") {
		t.Fatalf("expected missing-files error, got %v", err)
	}
}

func TestReviewCommand_PullRequestModeValidatesToken(t *testing.T) {
	cfg := localConfig(t.TempDir())
	cfg.AzureDevOps = config.AzureDevOpsConfig{
		OrgURL:        "https://dev.azure.com/acme",
		Project:       "platform",
		Repository:    "api",
		PullRequestID: 7,
	}
	root := cli.NewRootCommand(cli.Dependencies{
		Config: cfg,
		Args:   cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review", "main.go"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "azureDevOps.token") {
		t.Fatalf("expected token validation error, got %v", err)
	}
}

func TestReviewCommand_UnknownProvider(t *testing.T) {
	cfg := localConfig(t.TempDir())
	root := cli.NewRootCommand(cli.Dependencies{
		Config: cfg,
		Args:   cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review", "--provider", "nope"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestReviewCommand_OpenAIRequiresAPIKey(t *testing.T) {
	cfg := localConfig(t.TempDir())
	cfg.Provider.Name = "openai"
	root := cli.NewRootCommand(cli.Dependencies{
		Config: cfg,
		Args:   cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "provider.apiKey") {
		t.Fatalf("expected API key error, got %v", err)
	}
}

func TestReviewCommand_InvalidSummaryMaxAge(t *testing.T) {
	cfg := localConfig(t.TempDir())
	cfg.Review.SummaryMaxAge = "not-a-duration"
	root := cli.NewRootCommand(cli.Dependencies{
		Config: cfg,
		Args:   cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"review"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "summaryMaxAge") {
		t.Fatalf("expected duration parse error, got %v", err)
	}
}

func TestHistoryCommand_StoreDisabled(t *testing.T) {
	root := cli.NewRootCommand(cli.Dependencies{
		Config: config.Config{},
		Args:   cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"history"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled-store error, got %v", err)
	}
}

func TestHistoryCommand_ListsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	st, err := sqlite.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	run := store.Run{
		RunID:         "0123456789abcdef",
		Target:        "platform/api#7",
		StartedAt:     time.Now().Add(-time.Hour),
		FilesReviewed: 2,
		ModelCalls:    2,
		SummaryPosted: true,
	}
	if err := st.SaveRun(context.Background(), run, nil); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var cfg config.Config
	cfg.Store.Enabled = true
	cfg.Store.Path = dbPath

	buf := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Dependencies{
		Config: cfg,
		Args:   cli.Arguments{OutWriter: buf, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"history", "--no-color"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "platform/api#7") {
		t.Errorf("expected run target in history, got:\n%s", out)
	}
	if !strings.Contains(out, "summary posted") {
		t.Errorf("expected summary marker in history, got:\n%s", out)
	}
}
