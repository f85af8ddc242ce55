package quality

import (
	"context"
	"fmt"
	"time"

	questerrors "quest/internal/errors"
	"quest/internal/llm"
	"quest/internal/logging"
)

// Strategy selects how the evaluator scores a code artifact.
type Strategy string

const (
	// StrategyDimensions scores each quality dimension independently,
	// statement by statement.
	StrategyDimensions Strategy = "dimensions"
	// StrategyBaseline produces a single holistic score. Known to
	// systematically over-estimate quality relative to the dimension-wise
	// strategy.
	StrategyBaseline Strategy = "baseline"
)

// EvaluatorConfig configures an Evaluator.
type EvaluatorConfig struct {
	Strategy    Strategy
	NumRetries  int // oracle calls allowed per parse target before failing
	Temperature float64
	MaxTokens   int
}

// DefaultEvaluatorConfig returns the dimension-wise strategy with one retry.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		Strategy:    StrategyDimensions,
		NumRetries:  1,
		Temperature: 0.2,
		MaxTokens:   2048,
	}
}

// Evaluator wraps the scoring oracle and normalizes its output into a
// validated Report. Stateless between calls.
type Evaluator struct {
	client     llm.Client
	config     EvaluatorConfig
	dimensions []Dimension
	logger     logging.Logger
}

// NewEvaluator constructs an Evaluator. A nil dims slice selects the default
// ten-dimension rubric.
func NewEvaluator(client llm.Client, config EvaluatorConfig, dims []Dimension) *Evaluator {
	if config.NumRetries < 1 {
		config.NumRetries = 1
	}
	if dims == nil {
		dims = Dimensions()
	}
	return &Evaluator{
		client:     client,
		config:     config,
		dimensions: dims,
		logger:     logging.NewComponentLogger("evaluator"),
	}
}

// Dimensions returns the dimension names this evaluator reports on, in order.
func (e *Evaluator) Dimensions() []string {
	if e.config.Strategy == StrategyBaseline {
		return []string{OverallDimension}
	}
	names := make([]string, len(e.dimensions))
	for i, d := range e.dimensions {
		names[i] = d.Name
	}
	return names
}

// Strategy reports the configured evaluation strategy.
func (e *Evaluator) Strategy() Strategy { return e.config.Strategy }

// Evaluate scores one code artifact. On unusable oracle output it retries
// with fresh, independent calls up to the configured budget, then returns an
// EvaluationError. Partial results from a malformed response are never kept.
func (e *Evaluator) Evaluate(ctx context.Context, code string) (*Report, error) {
	start := time.Now()

	var (
		report *Report
		err    error
	)
	if e.config.Strategy == StrategyBaseline {
		report, err = e.evaluateBaseline(ctx, code)
	} else {
		report, err = e.evaluateDimensions(ctx, code)
	}
	if err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	e.logger.Info("evaluated %d dimensions, aggregate=%.3f", len(report.Scores), report.Aggregate())
	return report, nil
}

func (e *Evaluator) evaluateBaseline(ctx context.Context, code string) (*Report, error) {
	var usage llm.TokenUsage

	score, err := e.withRetries(ctx, func(ctx context.Context) (DimensionScore, error) {
		resp, callErr := e.complete(ctx, buildBaselineEvalPrompt(code))
		if callErr != nil {
			return DimensionScore{}, callErr
		}
		usage.Add(resp.Usage)
		return parseBaselineResponse(resp.Content)
	})
	if err != nil {
		return nil, err
	}

	report, err := NewReport([]DimensionScore{score}, []string{OverallDimension})
	if err != nil {
		return nil, &questerrors.EvaluationError{Attempts: e.config.NumRetries, Err: err}
	}
	report.Usage = usage
	return report, nil
}

func (e *Evaluator) evaluateDimensions(ctx context.Context, code string) (*Report, error) {
	var usage llm.TokenUsage
	scores := make([]DimensionScore, 0, len(e.dimensions))

	for _, dim := range e.dimensions {
		dim := dim
		score, err := e.withRetries(ctx, func(ctx context.Context) (DimensionScore, error) {
			resp, callErr := e.complete(ctx, buildDimensionEvalPrompt(code, dim))
			if callErr != nil {
				return DimensionScore{}, callErr
			}
			usage.Add(resp.Usage)
			return parseDimensionResponse(resp.Content, dim)
		})
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	report, err := NewReport(scores, e.Dimensions())
	if err != nil {
		return nil, &questerrors.EvaluationError{Attempts: e.config.NumRetries, Err: err}
	}
	report.Usage = usage
	return report, nil
}

// withRetries runs fn up to NumRetries times. Each attempt is an independent
// oracle call; a malformed response is discarded entirely before the next
// attempt. Context cancellation stops the retry loop immediately.
func (e *Evaluator) withRetries(ctx context.Context, fn func(ctx context.Context) (DimensionScore, error)) (DimensionScore, error) {
	var lastErr error
	for attempt := 1; attempt <= e.config.NumRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return DimensionScore{}, &questerrors.EvaluationError{Attempts: attempt - 1, Err: err}
		}
		score, err := fn(ctx)
		if err == nil {
			return score, nil
		}
		lastErr = err
		e.logger.Warn("evaluation attempt %d/%d failed: %v", attempt, e.config.NumRetries, err)
	}
	return DimensionScore{}, &questerrors.EvaluationError{Attempts: e.config.NumRetries, Err: lastErr}
}

func (e *Evaluator) complete(ctx context.Context, prompt string) (*llm.CompletionResponse, error) {
	return e.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: e.config.Temperature,
		MaxTokens:   e.config.MaxTokens,
	})
}

// parseBaselineResponse extracts the holistic score and insight.
func parseBaselineResponse(text string) (DimensionScore, error) {
	raw, ok := extractJSONBlock(text)
	if !ok {
		return DimensionScore{}, &questerrors.MalformedResponseError{Oracle: "scoring", Reason: "no JSON payload", Raw: text}
	}
	var payload struct {
		Insight string `json:"insight"`
		Score   *int   `json:"score"`
	}
	if err := decodeJSON(raw, &payload); err != nil {
		return DimensionScore{}, &questerrors.MalformedResponseError{Oracle: "scoring", Reason: err.Error(), Raw: text}
	}
	if payload.Score == nil {
		return DimensionScore{}, &questerrors.MalformedResponseError{Oracle: "scoring", Reason: "missing score field", Raw: text}
	}
	if *payload.Score < MinScore || *payload.Score > MaxScore {
		return DimensionScore{}, &questerrors.MalformedResponseError{
			Oracle: "scoring",
			Reason: fmt.Sprintf("score %d out of range [%d, %d]", *payload.Score, MinScore, MaxScore),
			Raw:    text,
		}
	}
	return DimensionScore{Dimension: OverallDimension, Score: *payload.Score, Insight: payload.Insight}, nil
}

// parseDimensionResponse extracts statement scores for one dimension and
// sums them into the dimension score.
func parseDimensionResponse(text string, dim Dimension) (DimensionScore, error) {
	raw, ok := extractJSONBlock(text)
	if !ok {
		return DimensionScore{}, &questerrors.MalformedResponseError{Oracle: "scoring", Reason: "no JSON payload", Raw: text}
	}
	var payload struct {
		Insight string `json:"insight"`
		Scores  []int  `json:"scores"`
	}
	if err := decodeJSON(raw, &payload); err != nil {
		return DimensionScore{}, &questerrors.MalformedResponseError{Oracle: "scoring", Reason: err.Error(), Raw: text}
	}
	if len(payload.Scores) != len(dim.Statements) {
		return DimensionScore{}, &questerrors.MalformedResponseError{
			Oracle: "scoring",
			Reason: fmt.Sprintf("dimension %s: got %d statement scores, expected %d", dim.Name, len(payload.Scores), len(dim.Statements)),
			Raw:    text,
		}
	}
	sum := 0
	for _, s := range payload.Scores {
		if s < -1 || s > 1 {
			return DimensionScore{}, &questerrors.MalformedResponseError{
				Oracle: "scoring",
				Reason: fmt.Sprintf("dimension %s: statement score %d not in {-1, 0, 1}", dim.Name, s),
				Raw:    text,
			}
		}
		sum += s
	}
	return DimensionScore{Dimension: dim.Name, Score: sum, Insight: payload.Insight}, nil
}
