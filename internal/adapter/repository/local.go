// Package repository implements the repository service port against a git
// repository on disk, for reviewing changes before they reach a pull
// request.
package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	formatdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/difflens/difflens/internal/domain"
	"github.com/difflens/difflens/internal/usecase/review"
)

// PostedComment is a comment captured locally instead of being sent to a
// hosting service. Line 0 marks a general comment.
type PostedComment struct {
	File string
	Line int
	Text string
}

// Local serves file content and diffs from a git repository and collects
// posted comments in memory for the terminal renderer.
type Local struct {
	repoDir string

	mu      sync.Mutex
	patches map[string]map[string]string
	posted  []PostedComment
}

// NewLocal constructs a Local for the given repository directory.
func NewLocal(repoDir string) *Local {
	return &Local{
		repoDir: repoDir,
		patches: make(map[string]map[string]string),
	}
}

// GetFileContent returns the file at the given ref.
func (l *Local) GetFileContent(ctx context.Context, path, ref string) (review.FileContent, error) {
	repo, err := l.open()
	if err != nil {
		return review.FileContent{}, err
	}
	commit, err := resolveCommit(repo, ref)
	if err != nil {
		return review.FileContent{}, fmt.Errorf("resolve ref %s: %w", ref, err)
	}

	file, err := commit.File(normalizePath(path))
	if err != nil {
		return review.FileContent{}, fmt.Errorf("file %s at %s: %w", path, ref, err)
	}

	binary, err := file.IsBinary()
	if err != nil {
		return review.FileContent{}, fmt.Errorf("inspect %s: %w", path, err)
	}
	if binary {
		return review.FileContent{IsBinary: true}, nil
	}

	content, err := file.Contents()
	if err != nil {
		return review.FileContent{}, fmt.Errorf("read %s: %w", path, err)
	}
	return review.FileContent{Content: content}, nil
}

// GetFileDiff returns the unified diff for one file between two refs. Files
// untouched between the refs get an empty diff.
func (l *Local) GetFileDiff(ctx context.Context, path, base, target string) (string, error) {
	patches, err := l.patchesBetween(base, target)
	if err != nil {
		return "", err
	}
	return patches[normalizePath(path)], nil
}

// ChangedFiles lists the files modified or added between the refs, for
// callers that do not already know what to review. Deleted files are
// omitted since there is no new version to annotate.
func (l *Local) ChangedFiles(ctx context.Context, base, target string) ([]string, error) {
	repo, err := l.open()
	if err != nil {
		return nil, err
	}
	patch, err := patchBetween(repo, base, target)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, fp := range patch.FilePatches() {
		_, to := fp.Files()
		if to == nil {
			continue
		}
		files = append(files, to.Path())
	}
	return files, nil
}

// ListThreads returns an empty snapshot; a local repository carries no
// review comments.
func (l *Local) ListThreads(ctx context.Context) ([]domain.CommentThread, error) {
	return nil, nil
}

// PostInlineComment records a line-anchored comment.
func (l *Local) PostInlineComment(ctx context.Context, path, text string, line int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.posted = append(l.posted, PostedComment{File: path, Line: line, Text: text})
	return nil
}

// PostGeneralComment records a comment with no file anchor.
func (l *Local) PostGeneralComment(ctx context.Context, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.posted = append(l.posted, PostedComment{Text: text})
	return nil
}

// Posted returns the comments captured so far, in posting order.
func (l *Local) Posted() []PostedComment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PostedComment, len(l.posted))
	copy(out, l.posted)
	return out
}

func (l *Local) open() (*goGit.Repository, error) {
	repo, err := goGit.PlainOpenWithOptions(l.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return repo, nil
}

// patchesBetween computes and caches per-file patch text for a ref pair.
func (l *Local) patchesBetween(base, target string) (map[string]string, error) {
	key := base + ".." + target

	l.mu.Lock()
	cached, ok := l.patches[key]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	repo, err := l.open()
	if err != nil {
		return nil, err
	}
	patch, err := patchBetween(repo, base, target)
	if err != nil {
		return nil, err
	}

	perFile := make(map[string]string)
	for _, fp := range patch.FilePatches() {
		_, to := fp.Files()
		if to == nil {
			continue
		}
		text, err := encodeFilePatch(fp)
		if err != nil {
			return nil, fmt.Errorf("encode patch: %w", err)
		}
		perFile[to.Path()] = text
	}

	l.mu.Lock()
	l.patches[key] = perFile
	l.mu.Unlock()
	return perFile, nil
}

func patchBetween(repo *goGit.Repository, base, target string) (*object.Patch, error) {
	baseCommit, err := resolveCommit(repo, base)
	if err != nil {
		return nil, fmt.Errorf("resolve base ref: %w", err)
	}
	targetCommit, err := resolveCommit(repo, target)
	if err != nil {
		return nil, fmt.Errorf("resolve target ref: %w", err)
	}
	patch, err := baseCommit.Patch(targetCommit)
	if err != nil {
		return nil, fmt.Errorf("compute patch: %w", err)
	}
	return patch, nil
}

// resolveCommit resolves a revision, trying the bare name first and then
// the usual branch ref prefixes.
func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("unable to resolve ref " + ref)
}

// encodeFilePatch renders one file patch as unified diff text.
func encodeFilePatch(fp formatdiff.FilePatch) (string, error) {
	var buf bytes.Buffer
	encoder := formatdiff.NewUnifiedEncoder(&buf, formatdiff.DefaultContextLines)
	if err := encoder.Encode(singlePatch{fp: fp}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type singlePatch struct {
	fp formatdiff.FilePatch
}

func (s singlePatch) FilePatches() []formatdiff.FilePatch {
	return []formatdiff.FilePatch{s.fp}
}

func (s singlePatch) Message() string {
	return ""
}

// normalizePath strips the leading slash remote-style paths may carry.
func normalizePath(path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path[1:]
	}
	return path
}
