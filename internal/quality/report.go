package quality

import (
	"fmt"
	"time"

	"quest/internal/llm"
)

// DimensionScore captures a per-dimension judgement: an integer score within
// [MinScore, MaxScore] and a free-text insight justifying it.
type DimensionScore struct {
	Dimension string `json:"dimension"`
	Score     int    `json:"score"`
	Insight   string `json:"insight"`
}

// Report is a complete evaluation of one code artifact: one DimensionScore
// per dimension, in declaration order, plus call metadata. Reports are
// immutable after construction.
type Report struct {
	Scores   []DimensionScore `json:"scores"`
	Usage    llm.TokenUsage   `json:"usage"`
	Duration time.Duration    `json:"duration"`
}

// NewReport validates scores against the expected dimension ordering and
// bounds and returns an immutable report. Every expected dimension must be
// present exactly once, in order.
func NewReport(scores []DimensionScore, expected []string) (*Report, error) {
	if len(scores) != len(expected) {
		return nil, fmt.Errorf("report has %d dimension scores, expected %d", len(scores), len(expected))
	}
	for i, s := range scores {
		if s.Dimension != expected[i] {
			return nil, fmt.Errorf("dimension %d is %q, expected %q", i, s.Dimension, expected[i])
		}
		if s.Score < MinScore || s.Score > MaxScore {
			return nil, fmt.Errorf("dimension %q score %d out of range [%d, %d]", s.Dimension, s.Score, MinScore, MaxScore)
		}
	}
	out := make([]DimensionScore, len(scores))
	copy(out, scores)
	return &Report{Scores: out}, nil
}

// Aggregate reduces the report to a single scalar in [-1, 1]: the mean of the
// dimension scores normalized by MaxScore. It is a pure function of the
// dimension scores.
func (r *Report) Aggregate() float64 {
	if len(r.Scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range r.Scores {
		sum += s.Score
	}
	return float64(sum) / float64(len(r.Scores)) / float64(MaxScore)
}

// Lookup returns the score for a named dimension, if present.
func (r *Report) Lookup(dimension string) (DimensionScore, bool) {
	for _, s := range r.Scores {
		if s.Dimension == dimension {
			return s, true
		}
	}
	return DimensionScore{}, false
}
