package quality

import (
	"encoding/json"
	"strings"
)

// feedbackRecord is the wire shape of one dimension's feedback entry.
type feedbackRecord struct {
	QualityDimension string `json:"quality_dimension"`
	DimensionScore   int    `json:"dimension_score"`
	DimensionInsight string `json:"dimension_insight"`
}

// FormatFeedback renders a report as the feedback text handed to the
// optimizer: one JSON record per dimension, in declaration order. The
// transformation is pure and order-preserving, so identical reports always
// yield byte-identical feedback.
func FormatFeedback(report *Report) string {
	records := make([]feedbackRecord, len(report.Scores))
	for i, s := range report.Scores {
		records[i] = feedbackRecord{
			QualityDimension: s.Dimension,
			DimensionScore:   s.Score,
			DimensionInsight: s.Insight,
		}
	}
	// Marshal cannot fail for this shape; fall back to an empty list if it does.
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "[]"
	}
	return strings.TrimSpace(string(data))
}
