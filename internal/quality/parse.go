package quality

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Fences are matched leniently (two or more opening backticks): sampled
// oracle output frequently drops a backtick from the fence.
var (
	jsonFenceRe = regexp.MustCompile("(?s)`{2,}json\\s*(.*?)`{3,}")
	codeFenceRe = regexp.MustCompile("(?s)`{2,}improved_code[ \t]*\n?(.*?)`{3,}")
)

// extractJSONBlock pulls the JSON payload out of an oracle response: a
// ```json fenced block when present, otherwise the outermost brace pair.
func extractJSONBlock(text string) (string, bool) {
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1], true
	}
	return "", false
}

// decodeJSON unmarshals raw into v, attempting a jsonrepair pass when the
// strict decode fails. Oracle output is sampled text; trailing commas,
// single quotes, and similar damage are common and repairable.
func decodeJSON(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	repaired, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return fmt.Errorf("unparseable JSON payload: %w", repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("decode repaired JSON: %w", err)
	}
	return nil
}

// extractImprovedCode pulls the candidate script out of the optimizer
// response's ```improved_code fence. A response with no such fence carries no
// extractable candidate.
func extractImprovedCode(text string) (string, bool) {
	m := codeFenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	code := strings.Trim(m[1], "\n")
	if strings.TrimSpace(code) == "" {
		return "", false
	}
	return code, true
}
