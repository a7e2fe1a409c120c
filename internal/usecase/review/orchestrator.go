package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/difflens/difflens/internal/diff"
	"github.com/difflens/difflens/internal/domain"
	"github.com/difflens/difflens/internal/usecase/annotate"
	"github.com/difflens/difflens/internal/usecase/dedupe"
	"github.com/difflens/difflens/internal/usecase/reconcile"
)

// Options configures a review run.
type Options struct {
	// Base and Target are the refs the diff is computed between.
	Base   string
	Target string

	// RunTarget identifies the change for run history, e.g. "org/repo#12".
	RunTarget string

	// ConfidenceThreshold drops findings the model is not sure about before
	// reconciliation. Defaults to 0.6.
	ConfidenceThreshold float64

	// ContextRadius is the context padding around changed blocks. A
	// negative value selects the diff package default.
	ContextRadius int

	// MaxModelCalls bounds model invocations per run. Non-positive means
	// unlimited.
	MaxModelCalls int

	// ServiceMarker identifies the automated reviewer in comment authorship.
	ServiceMarker string

	// SummaryMaxAge is how recent an existing summary must be to skip
	// posting a new one. Non-positive selects the dedupe default.
	SummaryMaxAge time.Duration
}

// defaultConfidenceThreshold is applied when Options leaves it zero.
const defaultConfidenceThreshold = 0.6

// FilePassResult reports one file's pass. Skipped carries the reason the
// file was not reviewed; empty means the pass ran to completion.
type FilePassResult struct {
	File       string
	Findings   int
	Posted     []domain.Annotation
	Suppressed int
	Demoted    int
	Skipped    string
}

// RunResult reports a whole run.
type RunResult struct {
	Files         []FilePassResult
	ModelCalls    int
	SummaryPosted bool
	StartedAt     time.Time
}

// Posted counts annotations posted across all files.
func (r RunResult) Posted() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Posted)
	}
	return n
}

// Orchestrator drives review runs. Each file pass is stateless relative to
// other files; the only shared mutable state is the session's model-call
// budget.
type Orchestrator struct {
	repo       RepositoryService
	provider   Provider
	prompts    *PromptBuilder
	reconciler *reconcile.Reconciler
	aggregator *annotate.Aggregator
	guard      *dedupe.Guard
	logger     Logger
	store      RunStore
	opts       Options
}

// NewOrchestrator wires an Orchestrator from its collaborators.
func NewOrchestrator(repo RepositoryService, provider Provider, prompts *PromptBuilder, opts Options) *Orchestrator {
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = defaultConfidenceThreshold
	}
	return &Orchestrator{
		repo:       repo,
		provider:   provider,
		prompts:    prompts,
		reconciler: reconcile.NewReconciler(),
		aggregator: annotate.NewAggregator(),
		guard:      dedupe.NewGuard(opts.ServiceMarker),
		opts:       opts,
	}
}

// WithLogger sets an optional structured logger.
func (o *Orchestrator) WithLogger(logger Logger) *Orchestrator {
	o.logger = logger
	return o
}

// WithStore sets an optional run-history store.
func (o *Orchestrator) WithStore(store RunStore) *Orchestrator {
	o.store = store
	return o
}

// Run reviews the given files and posts a run summary. Collaborator
// failures degrade the run rather than aborting it: a missing comment
// snapshot disables duplicate suppression, a failed diff fetch reviews the
// file as unchanged, and posting errors are logged per annotation.
func (o *Orchestrator) Run(ctx context.Context, paths []string) (RunResult, error) {
	result := RunResult{StartedAt: time.Now()}
	sess := NewSession(o.opts.MaxModelCalls)

	threads, thrErr := o.repo.ListThreads(ctx)
	if thrErr != nil {
		// Degrade to "assume no duplicates".
		o.warn(ctx, "listing existing comments failed, duplicate suppression disabled", map[string]interface{}{
			"error": thrErr.Error(),
		})
		threads = nil
	}

	for _, path := range paths {
		result.Files = append(result.Files, o.ReviewFile(ctx, sess, path, threads))
	}
	result.ModelCalls = sess.Used()

	result.SummaryPosted = o.postSummary(ctx, result, threads, thrErr != nil)

	o.record(ctx, result)

	return result, nil
}

// ReviewFile runs one file pass: Parse, BuildBlocks, Reconcile per finding,
// Aggregate, DuplicateCheck per annotation, Emit. The pass is idempotent
// given identical diff text, findings, and comment snapshot.
func (o *Orchestrator) ReviewFile(ctx context.Context, sess *Session, path string, threads []domain.CommentThread) FilePassResult {
	result := FilePassResult{File: path}

	diffText, err := o.repo.GetFileDiff(ctx, path, o.opts.Base, o.opts.Target)
	if err != nil {
		// Best-effort default: review proceeds against an empty diff, which
		// ends the pass below with nothing to annotate.
		o.warn(ctx, "diff fetch failed, treating file as unchanged", map[string]interface{}{
			"file": path, "error": err.Error(),
		})
		diffText = ""
	}

	analysis := diff.Parse(diffText)
	if analysis.Empty() {
		result.Skipped = "no changed lines"
		return result
	}

	content, err := o.repo.GetFileContent(ctx, path, o.opts.Target)
	if err != nil {
		o.warn(ctx, "content fetch failed, skipping file", map[string]interface{}{
			"file": path, "error": err.Error(),
		})
		result.Skipped = "content unavailable"
		return result
	}
	if content.IsBinary {
		result.Skipped = "binary file"
		return result
	}

	fileLines := strings.Split(content.Content, "\n")
	blocks := diff.BuildBlocks(analysis.AddedLines, fileLines, o.opts.ContextRadius)

	if !sess.Acquire() {
		o.warn(ctx, "model call budget exhausted", map[string]interface{}{"file": path})
		result.Skipped = "model budget exhausted"
		return result
	}

	req, err := o.prompts.Build(path, blocks)
	if err != nil {
		o.warn(ctx, "prompt build failed", map[string]interface{}{"file": path, "error": err.Error()})
		result.Skipped = "prompt build failed"
		return result
	}

	findings, err := o.provider.Review(ctx, req)
	if err != nil {
		o.warn(ctx, "model call failed", map[string]interface{}{"file": path, "error": err.Error()})
		result.Skipped = "model call failed"
		return result
	}

	var items []annotate.ReconciledFinding
	for _, f := range findings {
		if f.Confidence < o.opts.ConfidenceThreshold {
			continue
		}
		items = append(items, annotate.ReconciledFinding{
			Finding: f,
			Line:    o.reconciler.Reconcile(f, analysis, fileLines),
		})
	}
	result.Findings = len(items)

	annotations := o.aggregator.Aggregate(path, items, analysis)

	for _, ann := range annotations {
		if o.guard.ShouldSuppress(ann, threads) {
			result.Suppressed++
			continue
		}
		if err := o.post(ctx, ann); err != nil {
			o.warn(ctx, "posting annotation failed", map[string]interface{}{
				"file": path, "line": ann.Line, "error": err.Error(),
			})
			continue
		}
		if !ann.Inline() {
			result.Demoted++
		}
		result.Posted = append(result.Posted, ann)
	}

	return result
}

// post emits one annotation through the repository service.
func (o *Orchestrator) post(ctx context.Context, ann domain.Annotation) error {
	if ann.Inline() {
		return o.repo.PostInlineComment(ctx, ann.File, ann.Text, ann.Line)
	}
	return o.repo.PostGeneralComment(ctx, fmt.Sprintf("%s: %s", ann.File, ann.Text))
}

// postSummary posts the run summary unless a recent one already exists.
// When the comment snapshot was unavailable, the run store's history is
// consulted instead so a flapping API does not produce a summary per run.
func (o *Orchestrator) postSummary(ctx context.Context, result RunResult, threads []domain.CommentThread, snapshotMissing bool) bool {
	now := time.Now()

	if o.guard.SummaryPostedRecently(threads, now, o.opts.SummaryMaxAge) {
		return false
	}
	if snapshotMissing && o.store != nil {
		maxAge := o.opts.SummaryMaxAge
		if maxAge <= 0 {
			maxAge = dedupe.DefaultSummaryMaxAge
		}
		if at, found, err := o.store.LatestSummaryAt(ctx, o.opts.RunTarget); err == nil && found && now.Sub(at) < maxAge {
			return false
		}
	}

	if err := o.repo.PostGeneralComment(ctx, o.summaryText(result)); err != nil {
		o.warn(ctx, "posting summary failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	return true
}

// summaryText renders the run summary. It must start with the dedupe
// package's SummaryMarker so later runs can recognize it.
func (o *Orchestrator) summaryText(result RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", dedupe.SummaryMarker)

	reviewed := 0
	byType := make(map[domain.FindingType]int)
	for _, f := range result.Files {
		if f.Skipped == "" {
			reviewed++
		}
		for _, ann := range f.Posted {
			byType[ann.Type]++
		}
	}

	fmt.Fprintf(&b, "Reviewed %d file(s), posted %d annotation(s) using %d model call(s).\n",
		reviewed, result.Posted(), result.ModelCalls)

	for _, ft := range []domain.FindingType{domain.FindingBug, domain.FindingSecurity, domain.FindingImprovement, domain.FindingStyle, domain.FindingTest} {
		if n := byType[ft]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", ft, n)
		}
	}

	return b.String()
}

// record persists the run; failures are logged and otherwise ignored.
func (o *Orchestrator) record(ctx context.Context, result RunResult) {
	if o.store == nil {
		return
	}

	rec := RunRecord{
		RunID:         uuid.NewString(),
		Target:        o.opts.RunTarget,
		StartedAt:     result.StartedAt,
		ModelCalls:    result.ModelCalls,
		SummaryPosted: result.SummaryPosted,
	}
	for _, f := range result.Files {
		if f.Skipped == "" {
			rec.FilesReviewed++
		}
		rec.Annotations = append(rec.Annotations, f.Posted...)
	}

	if err := o.store.RecordRun(ctx, rec); err != nil {
		o.warn(ctx, "recording run failed", map[string]interface{}{"error": err.Error()})
	}
}

// warn logs through the optional logger.
func (o *Orchestrator) warn(ctx context.Context, msg string, fields map[string]interface{}) {
	if o.logger != nil {
		o.logger.LogWarning(ctx, msg, fields)
	}
}
