package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quest/internal/quality"
	"quest/internal/quester"
)

func sampleResult(t *testing.T) *quester.QuestResult {
	t.Helper()
	initial, err := quality.NewReport(
		[]quality.DimensionScore{{Dimension: quality.OverallDimension, Score: 1, Insight: "rough"}},
		[]string{quality.OverallDimension},
	)
	if err != nil {
		t.Fatal(err)
	}
	improved, err := quality.NewReport(
		[]quality.DimensionScore{{Dimension: quality.OverallDimension, Score: 4, Insight: "much better"}},
		[]string{quality.OverallDimension},
	)
	if err != nil {
		t.Fatal(err)
	}

	return &quester.QuestResult{
		Trajectory: []quester.TrajectoryStep{
			{Round: 0, Code: "x = 1\n", Report: initial},
			{Round: 1, Code: "x = 2\n", Report: improved, Accepted: true},
			{Round: 2, Code: "x = broken(\n", Accepted: false, Note: "candidate failed syntax check"},
		},
		State:     quester.StateExhausted,
		Reason:    "round budget of 2 exhausted",
		BestRound: 1,
		FinalCode: "x = 2\n",
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewRenderer(&buf, false)
	renderer.Render("sample", sampleResult(t))

	out := buf.String()
	for _, want := range []string{
		"=== sample: EXHAUSTED",
		"Round  Aggregate  Accepted  Note",
		"+0.200",
		"+0.800",
		"candidate failed syntax check",
		"Best accepted round: 1",
		"much better",
		"Tokens:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	// Color disabled means no escape codes.
	if strings.Contains(out, "\x1b[") {
		t.Error("output contains ANSI escapes with color disabled")
	}
}

func TestRender_NoAcceptedCandidate(t *testing.T) {
	result := sampleResult(t)
	result.Trajectory[1].Accepted = false
	result.BestRound = -1
	result.FinalCode = "x = 1\n"

	var buf bytes.Buffer
	NewRenderer(&buf, false).Render("sample", result)
	if !strings.Contains(buf.String(), "No candidate accepted") {
		t.Error("missing no-acceptance notice")
	}
}

func TestWriteVersions(t *testing.T) {
	dir := t.TempDir()
	if err := WriteVersions(dir, "sample", ".py", sampleResult(t)); err != nil {
		t.Fatal(err)
	}

	accepted, err := os.ReadFile(filepath.Join(dir, "sample_round_1.py"))
	if err != nil {
		t.Fatalf("accepted version not written: %v", err)
	}
	if string(accepted) != "x = 2\n" {
		t.Errorf("round 1 content = %q", accepted)
	}

	final, err := os.ReadFile(filepath.Join(dir, "sample_final.py"))
	if err != nil {
		t.Fatalf("final version not written: %v", err)
	}
	if string(final) != "x = 2\n" {
		t.Errorf("final content = %q", final)
	}

	// Rejected rounds leave no file behind.
	if _, err := os.Stat(filepath.Join(dir, "sample_round_2.py")); err == nil {
		t.Error("rejected round written to disk")
	}
}

func TestDiffGenerator(t *testing.T) {
	gen := newDiffGenerator(false)

	diff := gen.Unified("a\nb\nc\n", "a\nB\nc\n", "sample")
	if diff == "" {
		t.Fatal("expected non-empty diff for changed content")
	}
	if !strings.Contains(diff, "B") {
		t.Errorf("diff missing changed line:\n%s", diff)
	}

	if gen.Unified("same\n", "same\n", "sample") != "" {
		t.Error("identical content produced a diff")
	}

	added, deleted := countChanges("a\nb\n", "a\nb\nc\nd\n")
	if added != 2 || deleted != 0 {
		t.Errorf("countChanges = +%d/-%d, want +2/-0", added, deleted)
	}
}
