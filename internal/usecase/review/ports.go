// Package review orchestrates a review run: fetching diffs and content,
// prompting the language model, reconciling findings onto changed lines,
// aggregating annotations, and posting whatever the duplicate guard lets
// through. All blocking I/O lives behind the ports defined here; the
// reconciliation core itself is pure and in-memory.
package review

import (
	"context"
	"time"

	"github.com/difflens/difflens/internal/domain"
)

// FileContent is a file snapshot fetched from the repository service.
type FileContent struct {
	Content  string
	IsBinary bool
}

// RepositoryService is the port to the system hosting the code change:
// file content and diffs in, comments out.
type RepositoryService interface {
	// GetFileContent returns the file at the target ref.
	GetFileContent(ctx context.Context, path, ref string) (FileContent, error)

	// GetFileDiff returns the unified diff for one file between two refs.
	GetFileDiff(ctx context.Context, path, base, target string) (string, error)

	// ListThreads returns the existing comment snapshot for the change.
	ListThreads(ctx context.Context) ([]domain.CommentThread, error)

	// PostInlineComment attaches a comment to a specific new-file line.
	PostInlineComment(ctx context.Context, path, text string, line int) error

	// PostGeneralComment posts a comment not tied to any line.
	PostGeneralComment(ctx context.Context, text string) error
}

// ProviderRequest is a rendered prompt for the language model.
type ProviderRequest struct {
	Prompt    string
	MaxTokens int
}

// Provider is the port to the language model. Implementations own the
// recovery of malformed model output into well-formed findings; the
// orchestrator never sees raw model text.
type Provider interface {
	Review(ctx context.Context, req ProviderRequest) ([]domain.Finding, error)
}

// Logger provides structured logging for the review use case. Implementations
// must tolerate a nil fields map.
type Logger interface {
	// LogWarning logs a warning message with structured fields.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}

// RunStore persists run history. It backs the summary recency check when
// the comment snapshot is unavailable; a nil store disables persistence.
type RunStore interface {
	// RecordRun saves a run and its posted annotations.
	RecordRun(ctx context.Context, rec RunRecord) error

	// LatestSummaryAt returns when a summary was last posted for the target,
	// reporting found=false when there is no history.
	LatestSummaryAt(ctx context.Context, target string) (at time.Time, found bool, err error)
}

// RunRecord captures one completed review run.
type RunRecord struct {
	RunID         string
	Target        string
	StartedAt     time.Time
	FilesReviewed int
	ModelCalls    int
	SummaryPosted bool
	Annotations   []domain.Annotation
}
