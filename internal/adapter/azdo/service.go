package azdo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/difflens/difflens/internal/diff"
	"github.com/difflens/difflens/internal/domain"
	"github.com/difflens/difflens/internal/usecase/review"
)

// Service implements the repository service port against one pull request.
// Diffs are synthesized from the base and target file snapshots because the
// API serves no per-file patch text.
type Service struct {
	client        *Client
	pullRequestID int
}

// NewService wraps a Client for the given pull request.
func NewService(client *Client, pullRequestID int) *Service {
	return &Service{client: client, pullRequestID: pullRequestID}
}

// GetFileContent returns the file at the given ref.
func (s *Service) GetFileContent(ctx context.Context, path, ref string) (review.FileContent, error) {
	item, err := s.client.GetItem(ctx, apiPath(path), ref)
	if err != nil {
		return review.FileContent{}, fmt.Errorf("fetching %s at %s: %w", path, ref, err)
	}
	return review.FileContent{
		Content:  item.Content,
		IsBinary: looksBinary(item.Content),
	}, nil
}

// GetFileDiff computes the unified diff for one file between two refs. A
// file absent at the base ref diffs against empty, so new files show every
// line as added.
func (s *Service) GetFileDiff(ctx context.Context, path, base, target string) (string, error) {
	oldText, err := s.contentOrEmpty(ctx, path, base)
	if err != nil {
		return "", err
	}
	newText, err := s.contentOrEmpty(ctx, path, target)
	if err != nil {
		return "", err
	}
	return diff.Unified(strings.TrimPrefix(path, "/"), oldText, newText), nil
}

// ListThreads returns the pull request's comment threads as domain values.
func (s *Service) ListThreads(ctx context.Context) ([]domain.CommentThread, error) {
	threads, err := s.client.ListThreads(ctx, s.pullRequestID)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	return MapThreads(threads), nil
}

// PostInlineComment creates an active thread anchored to one line of the
// new file version.
func (s *Service) PostInlineComment(ctx context.Context, path, text string, line int) error {
	tc := &ThreadContext{
		FilePath:       apiPath(path),
		RightFileStart: &Position{Line: line, Offset: 1},
		RightFileEnd:   &Position{Line: line, Offset: 1},
	}
	if _, err := s.client.CreateThread(ctx, s.pullRequestID, tc, text); err != nil {
		return fmt.Errorf("posting inline comment on %s:%d: %w", path, line, err)
	}
	return nil
}

// PostGeneralComment creates an active thread with no file anchor.
func (s *Service) PostGeneralComment(ctx context.Context, text string) error {
	if _, err := s.client.CreateThread(ctx, s.pullRequestID, nil, text); err != nil {
		return fmt.Errorf("posting general comment: %w", err)
	}
	return nil
}

// contentOrEmpty fetches file content, treating a missing file as empty.
func (s *Service) contentOrEmpty(ctx context.Context, path, ref string) (string, error) {
	item, err := s.client.GetItem(ctx, apiPath(path), ref)
	if errors.Is(err, ErrItemNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("fetching %s at %s: %w", path, ref, err)
	}
	return item.Content, nil
}

// apiPath ensures the leading slash the items API expects.
func apiPath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// looksBinary reports whether content appears to be binary. The API decodes
// text files into the content field; binary payloads surface with NUL bytes.
func looksBinary(content string) bool {
	return strings.ContainsRune(content, '\x00')
}
