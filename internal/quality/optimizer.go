package quality

import (
	"context"
	"time"

	questerrors "quest/internal/errors"
	"quest/internal/llm"
	"quest/internal/logging"
)

// SyntaxChecker reports whether code parses in the target language.
// Implementations must be pure and local.
type SyntaxChecker interface {
	Check(code string) bool
}

// TestRunner executes the supplied test cases against a candidate, isolated
// and time-bounded. A timeout or crash reports false, never an error.
type TestRunner interface {
	Run(ctx context.Context, code string) bool
}

// OptimizationResult is the optimizer's output: the candidate code plus the
// validation verdicts the loop's acceptance policy consumes.
type OptimizationResult struct {
	Code              string         `json:"code"`
	SyntaxOK          bool           `json:"syntax_ok"`
	TestsOK           bool           `json:"tests_ok"`
	TestsRan          bool           `json:"tests_ran"`
	Feedback          string         `json:"feedback"`
	ImprovementPoints []string       `json:"improvement_points,omitempty"`
	Explanations      []string       `json:"explanations,omitempty"`
	Usage             llm.TokenUsage `json:"usage"`
	Duration          time.Duration  `json:"duration"`
}

// OptimizerConfig configures an Optimizer.
type OptimizerConfig struct {
	NumRetries  int
	Temperature float64
	MaxTokens   int
	// Baseline selects the holistic-feedback prompt used alongside the
	// baseline evaluation strategy.
	Baseline bool
}

// DefaultOptimizerConfig returns the dimension-feedback prompt with one retry.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		NumRetries:  1,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
}

// Optimizer wraps the revision oracle and validates its candidates. A nil
// runner skips test execution (tests vacuously pass). Stateless between calls.
type Optimizer struct {
	client  llm.Client
	config  OptimizerConfig
	checker SyntaxChecker
	runner  TestRunner
	logger  logging.Logger
}

// NewOptimizer constructs an Optimizer.
func NewOptimizer(client llm.Client, config OptimizerConfig, checker SyntaxChecker, runner TestRunner) *Optimizer {
	if config.NumRetries < 1 {
		config.NumRetries = 1
	}
	return &Optimizer{
		client:  client,
		config:  config,
		checker: checker,
		runner:  runner,
		logger:  logging.NewComponentLogger("optimizer"),
	}
}

// Optimize asks the revision oracle for an improved candidate and validates
// it. Extraction failures are retried with fresh calls up to the configured
// budget, then reported as an OptimizationError. A candidate that fails
// syntax or test validation is still returned; rejecting it is the loop's
// decision, not the optimizer's.
func (o *Optimizer) Optimize(ctx context.Context, code, feedback string) (*OptimizationResult, error) {
	start := time.Now()
	prompt := buildOptimizerPrompt(code, feedback, o.config.Baseline)

	var usage llm.TokenUsage
	var lastErr error
	result := (*OptimizationResult)(nil)

	for attempt := 1; attempt <= o.config.NumRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &questerrors.OptimizationError{Attempts: attempt - 1, Err: err}
		}

		resp, err := o.client.Complete(ctx, llm.CompletionRequest{
			Messages: []llm.Message{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			Temperature: o.config.Temperature,
			MaxTokens:   o.config.MaxTokens,
		})
		if err != nil {
			lastErr = err
			o.logger.Warn("optimization attempt %d/%d failed: %v", attempt, o.config.NumRetries, err)
			continue
		}
		usage.Add(resp.Usage)

		candidate, ok := extractImprovedCode(resp.Content)
		if !ok {
			lastErr = &questerrors.MalformedResponseError{Oracle: "revision", Reason: "no improved_code block", Raw: resp.Content}
			o.logger.Warn("optimization attempt %d/%d returned no code block", attempt, o.config.NumRetries)
			continue
		}

		points, explanations := parseImprovementReport(resp.Content)
		result = &OptimizationResult{
			Code:              candidate,
			Feedback:          feedback,
			ImprovementPoints: points,
			Explanations:      explanations,
		}
		break
	}
	if result == nil {
		return nil, &questerrors.OptimizationError{Attempts: o.config.NumRetries, Err: lastErr}
	}

	result.SyntaxOK = o.checker == nil || o.checker.Check(result.Code)

	// Tests only run against a parseable candidate; without supplied test
	// cases the check is vacuously true.
	result.TestsOK = true
	if o.runner != nil && result.SyntaxOK {
		result.TestsRan = true
		result.TestsOK = o.runner.Run(ctx, result.Code)
	}

	result.Usage = usage
	result.Duration = time.Since(start)
	o.logger.Info("candidate produced: syntax_ok=%t tests_ok=%t tests_ran=%t", result.SyntaxOK, result.TestsOK, result.TestsRan)
	return result, nil
}

// parseImprovementReport extracts the optional JSON report accompanying the
// candidate. The candidate itself is authoritative; a damaged or missing
// report is tolerated.
func parseImprovementReport(text string) (points, explanations []string) {
	raw, ok := extractJSONBlock(text)
	if !ok {
		return nil, nil
	}
	var payload struct {
		ImprovementPoints []string `json:"improvement_points"`
		ExplanationReport []string `json:"explanation_report"`
	}
	if err := decodeJSON(raw, &payload); err != nil {
		return nil, nil
	}
	return payload.ImprovementPoints, payload.ExplanationReport
}
