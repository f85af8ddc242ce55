package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"quest/internal/quester"
)

// Renderer writes a human-readable run report.
type Renderer struct {
	out          io.Writer
	colorEnabled bool
	diff         *diffGenerator
}

// NewRenderer constructs a Renderer. Color should be disabled when the
// writer is not a terminal.
func NewRenderer(out io.Writer, colorEnabled bool) *Renderer {
	return &Renderer{
		out:          out,
		colorEnabled: colorEnabled,
		diff:         newDiffGenerator(colorEnabled),
	}
}

// Render prints the run summary: termination state, the per-round table,
// the final dimension report, and diffs between consecutive accepted
// versions.
func (r *Renderer) Render(name string, result *quester.QuestResult) {
	header := fmt.Sprintf("=== %s: %s (%s) ===", name, strings.ToUpper(string(result.State)), result.Reason)
	fmt.Fprintln(r.out, r.paint(header, color.Bold))

	r.renderRounds(result)
	r.renderFinalReport(result)
	r.renderDiffs(name, result)

	fmt.Fprintf(r.out, "\nTokens: prompt=%d completion=%d total=%d | Duration: %s\n",
		result.Usage.PromptTokens, result.Usage.CompletionTokens, result.Usage.TotalTokens,
		result.Duration.Round(time.Millisecond))
}

func (r *Renderer) renderRounds(result *quester.QuestResult) {
	fmt.Fprintln(r.out, "\nRound  Aggregate  Accepted  Note")
	for _, step := range result.Trajectory {
		aggregate := "-"
		if step.Report != nil {
			aggregate = fmt.Sprintf("%+.3f", step.Report.Aggregate())
		}
		line := fmt.Sprintf("%5d  %9s  %8t  %s", step.Round, aggregate, step.Accepted, step.Note)
		if step.Accepted {
			line = r.paint(line, color.FgGreen)
		} else if step.Round > 0 {
			line = r.paint(line, color.FgHiBlack)
		}
		fmt.Fprintln(r.out, line)
	}
	if result.BestRound >= 0 {
		fmt.Fprintf(r.out, "Best accepted round: %d\n", result.BestRound)
	} else {
		fmt.Fprintln(r.out, "No candidate accepted; final version is the original input.")
	}
}

func (r *Renderer) renderFinalReport(result *quester.QuestResult) {
	// The final report is the evaluation of the last accepted step, or the
	// round-0 report when nothing was accepted.
	var last *quester.TrajectoryStep
	for i := len(result.Trajectory) - 1; i >= 0; i-- {
		step := result.Trajectory[i]
		if step.Report != nil && (step.Accepted || step.Round == 0) {
			last = &result.Trajectory[i]
			break
		}
	}
	if last == nil {
		return
	}

	fmt.Fprintf(r.out, "\nFinal quality report (round %d, aggregate %+.3f):\n", last.Round, last.Report.Aggregate())
	for _, s := range last.Report.Scores {
		scoreText := fmt.Sprintf("%+d", s.Score)
		if s.Score > 0 {
			scoreText = r.paint(scoreText, color.FgGreen)
		} else if s.Score < 0 {
			scoreText = r.paint(scoreText, color.FgRed)
		}
		fmt.Fprintf(r.out, "  %-16s %s  %s\n", s.Dimension, scoreText, s.Insight)
	}
}

func (r *Renderer) renderDiffs(name string, result *quester.QuestResult) {
	previous := ""
	previousRound := 0
	if len(result.Trajectory) > 0 {
		previous = result.Trajectory[0].Code
	}
	for _, step := range result.Trajectory {
		if step.Round == 0 || !step.Accepted {
			continue
		}
		diffText := r.diff.Unified(previous, step.Code, name)
		if diffText != "" {
			added, deleted := countChanges(previous, step.Code)
			fmt.Fprintf(r.out, "\nRound %d -> %d (+%d/-%d):\n%s", previousRound, step.Round, added, deleted, diffText)
		}
		previous = step.Code
		previousRound = step.Round
	}
}

func (r *Renderer) paint(text string, attr color.Attribute) string {
	if !r.colorEnabled {
		return text
	}
	return color.New(attr).Sprint(text)
}

// WriteVersions writes every accepted version and the final code under dir,
// mirroring the per-iteration outputs of the improvement cycle.
func WriteVersions(dir, name, ext string, result *quester.QuestResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, step := range result.Trajectory {
		if step.Round == 0 || !step.Accepted {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_round_%d%s", name, step.Round, ext))
		if err := os.WriteFile(path, []byte(step.Code), 0o644); err != nil {
			return fmt.Errorf("write version %s: %w", path, err)
		}
	}
	finalPath := filepath.Join(dir, name+"_final"+ext)
	if err := os.WriteFile(finalPath, []byte(result.FinalCode), 0o644); err != nil {
		return fmt.Errorf("write final version: %w", err)
	}
	return nil
}
