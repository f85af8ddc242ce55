// Package report renders run results for humans: per-round summaries,
// the final dimension report, and colorized diffs between accepted versions.
// It also writes accepted code versions to the output directory.
package report

import (
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffGenerator renders unified diffs between two code versions.
type diffGenerator struct {
	colorEnabled bool
}

func newDiffGenerator(colorEnabled bool) *diffGenerator {
	return &diffGenerator{colorEnabled: colorEnabled}
}

// Unified creates a colorized unified diff between old and new content.
// Identical contents yield an empty string.
func (g *diffGenerator) Unified(oldContent, newContent, label string) string {
	if oldContent == newContent {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	patches := dmp.PatchMake(oldContent, diffs)
	patchText := dmp.PatchToText(patches)

	var out strings.Builder
	out.WriteString(g.colorize("--- a/"+label+"\n", color.FgRed))
	out.WriteString(g.colorize("+++ b/"+label+"\n", color.FgGreen))

	for _, line := range strings.Split(patchText, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			out.WriteString(g.colorize(line+"\n", color.FgCyan))
		case strings.HasPrefix(line, "+"):
			out.WriteString(g.colorize(line+"\n", color.FgGreen))
		case strings.HasPrefix(line, "-"):
			out.WriteString(g.colorize(line+"\n", color.FgRed))
		case line != "":
			out.WriteString(line + "\n")
		}
	}
	return out.String()
}

func (g *diffGenerator) colorize(text string, attr color.Attribute) string {
	if !g.colorEnabled {
		return text
	}
	return color.New(attr).Sprint(text)
}

// countChanges counts added and deleted lines between two versions.
func countChanges(oldContent, newContent string) (added, deleted int) {
	dmp := diffmatchpatch.New()
	for _, d := range dmp.DiffMain(oldContent, newContent, false) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += strings.Count(d.Text, "\n")
			if !strings.HasSuffix(d.Text, "\n") {
				added++
			}
		case diffmatchpatch.DiffDelete:
			deleted += strings.Count(d.Text, "\n")
			if !strings.HasSuffix(d.Text, "\n") {
				deleted++
			}
		}
	}
	return
}
