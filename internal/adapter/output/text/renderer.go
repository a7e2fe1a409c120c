// Package text renders review results for a terminal, used in local mode
// where there is no pull request to post to.
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/difflens/difflens/internal/adapter/repository"
	"github.com/difflens/difflens/internal/domain"
	"github.com/difflens/difflens/internal/store"
	"github.com/difflens/difflens/internal/usecase/review"
)

// Renderer writes human-readable run output. Color is opt-in so piped
// output stays clean.
type Renderer struct {
	w        io.Writer
	useColor bool
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer, useColor bool) *Renderer {
	return &Renderer{w: w, useColor: useColor}
}

// RenderRun writes the per-file outcome of a run followed by the captured
// comments.
func (r *Renderer) RenderRun(result review.RunResult, comments []repository.PostedComment) {
	for _, f := range result.Files {
		if f.Skipped != "" {
			fmt.Fprintf(r.w, "%s %s (%s)\n", r.dim("skip"), f.File, f.Skipped)
			continue
		}
		fmt.Fprintf(r.w, "%s %s: %d finding(s), %d posted, %d suppressed\n",
			r.ok("done"), f.File, f.Findings, len(f.Posted), f.Suppressed)
		for _, ann := range f.Posted {
			if ann.Line > 0 {
				fmt.Fprintf(r.w, "  %s %s:%d\n", r.TypeLabel(ann.Type), f.File, ann.Line)
				continue
			}
			fmt.Fprintf(r.w, "  %s %s\n", r.TypeLabel(ann.Type), f.File)
		}
	}

	if len(comments) > 0 {
		fmt.Fprintln(r.w)
	}
	for _, c := range comments {
		if c.File == "" {
			fmt.Fprintf(r.w, "%s\n%s\n\n", r.header("General"), indent(c.Text))
			continue
		}
		fmt.Fprintf(r.w, "%s\n%s\n\n", r.header(fmt.Sprintf("%s:%d", c.File, c.Line)), indent(c.Text))
	}

	fmt.Fprintf(r.w, "Reviewed with %d model call(s); %d annotation(s) posted.\n",
		result.ModelCalls, result.Posted())
}

// RenderHistory writes recorded runs, newest first.
func (r *Renderer) RenderHistory(runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(r.w, "No recorded runs.")
		return
	}
	for _, run := range runs {
		summary := "no summary"
		if run.SummaryPosted {
			summary = "summary posted"
		}
		fmt.Fprintf(r.w, "%s  %s  %d file(s), %d call(s), %s  (%s)\n",
			r.dim(run.RunID[:shortID(run.RunID)]),
			run.Target,
			run.FilesReviewed,
			run.ModelCalls,
			summary,
			humanize.Time(run.StartedAt),
		)
	}
}

// TypeLabel renders a finding type with its color for inline use.
func (r *Renderer) TypeLabel(t domain.FindingType) string {
	if !r.useColor {
		return string(t)
	}
	switch t {
	case domain.FindingSecurity:
		return color.New(color.FgRed, color.Bold).Sprint(string(t))
	case domain.FindingBug:
		return color.New(color.FgRed).Sprint(string(t))
	case domain.FindingImprovement:
		return color.New(color.FgYellow).Sprint(string(t))
	case domain.FindingStyle:
		return color.New(color.FgCyan).Sprint(string(t))
	case domain.FindingTest:
		return color.New(color.FgGreen).Sprint(string(t))
	default:
		return string(t)
	}
}

func (r *Renderer) ok(s string) string {
	if !r.useColor {
		return s
	}
	return color.New(color.FgGreen).Sprint(s)
}

func (r *Renderer) dim(s string) string {
	if !r.useColor {
		return s
	}
	return color.New(color.Faint).Sprint(s)
}

func (r *Renderer) header(s string) string {
	if !r.useColor {
		return s
	}
	return color.New(color.Bold).Sprint(s)
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, ln := range lines {
		lines[i] = "  " + ln
	}
	return strings.Join(lines, "\n")
}

func shortID(id string) int {
	if len(id) < 8 {
		return len(id)
	}
	return 8
}
