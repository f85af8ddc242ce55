package quality

import (
	"strings"
	"testing"
)

func TestPromptCodePassesSmallArtifactsThrough(t *testing.T) {
	code := "def add(a, b):\n    return a + b\n"
	prompt := buildDimensionEvalPrompt(code, Dimensions()[0])
	if !strings.Contains(prompt, code) {
		t.Error("small artifact was altered in the prompt")
	}
}

func TestPromptCodeTruncatesOversizedArtifacts(t *testing.T) {
	// Far beyond the prompt budget on both the tiktoken path and the
	// rune-count fallback.
	huge := strings.Repeat("x = compute_something_expensive(x)\n", 8000)

	for _, prompt := range []string{
		buildBaselineEvalPrompt(huge),
		buildDimensionEvalPrompt(huge, Dimensions()[0]),
		buildOptimizerPrompt(huge, "feedback", false),
	} {
		if strings.Contains(prompt, huge) {
			t.Fatal("oversized artifact embedded verbatim in the prompt")
		}
		if len(prompt) >= len(huge) {
			t.Errorf("prompt length %d not reduced below artifact length %d", len(prompt), len(huge))
		}
	}
}
