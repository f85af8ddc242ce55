package quality

import (
	"context"
	"errors"
	"fmt"
	"testing"

	questerrors "quest/internal/errors"
	"quest/internal/llm"
)

const goodDimensionResponse = "```json\n{\"insight\": \"solid\", \"scores\": [1, 1, 0, 1, -1]}\n```"

func TestEvaluator_DimensionsStrategy(t *testing.T) {
	client := &llm.MockClient{Responses: []string{goodDimensionResponse}}
	evaluator := NewEvaluator(client, DefaultEvaluatorConfig(), nil)

	report, err := evaluator.Evaluate(context.Background(), "def f(): pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Scores) != 10 {
		t.Fatalf("got %d dimension scores, want 10", len(report.Scores))
	}
	// One oracle call per dimension.
	if client.Calls() != 10 {
		t.Errorf("oracle calls = %d, want 10", client.Calls())
	}
	// Each dimension sums its statement scores: 1+1+0+1-1 = 2.
	for _, s := range report.Scores {
		if s.Score != 2 {
			t.Errorf("dimension %q score = %d, want 2", s.Dimension, s.Score)
		}
		if s.Insight != "solid" {
			t.Errorf("dimension %q insight = %q", s.Dimension, s.Insight)
		}
	}
	if report.Usage.TotalTokens == 0 {
		t.Error("usage not accumulated")
	}
}

func TestEvaluator_BaselineStrategy(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"```json\n{\"insight\": \"decent overall\", \"score\": 3}\n```",
	}}
	config := DefaultEvaluatorConfig()
	config.Strategy = StrategyBaseline
	evaluator := NewEvaluator(client, config, nil)

	report, err := evaluator.Evaluate(context.Background(), "def f(): pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Calls() != 1 {
		t.Errorf("oracle calls = %d, want 1", client.Calls())
	}
	if len(report.Scores) != 1 || report.Scores[0].Dimension != OverallDimension {
		t.Fatalf("unexpected scores: %+v", report.Scores)
	}
	if report.Scores[0].Score != 3 {
		t.Errorf("score = %d, want 3", report.Scores[0].Score)
	}
}

func TestEvaluator_RetriesMalformedWithFreshCall(t *testing.T) {
	// First response is unusable; the retry must issue a new call rather
	// than salvage the damaged one.
	client := &llm.MockClient{Responses: []string{
		"I refuse to answer in JSON.",
		goodDimensionResponse,
	}}
	config := DefaultEvaluatorConfig()
	config.NumRetries = 2
	evaluator := NewEvaluator(client, config, nil)

	report, err := evaluator.Evaluate(context.Background(), "x = 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First dimension burns two calls, the remaining nine take one each.
	if client.Calls() != 11 {
		t.Errorf("oracle calls = %d, want 11", client.Calls())
	}
	if len(report.Scores) != 10 {
		t.Errorf("got %d scores, want 10", len(report.Scores))
	}
}

func TestEvaluator_ExhaustedBudgetFails(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"still not JSON"}}
	config := DefaultEvaluatorConfig()
	config.NumRetries = 2
	evaluator := NewEvaluator(client, config, nil)

	_, err := evaluator.Evaluate(context.Background(), "x = 1")
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	var evalErr *questerrors.EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got: %v", err)
	}
	if evalErr.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", evalErr.Attempts)
	}
	if !questerrors.IsMalformed(evalErr.Err) {
		t.Errorf("cause is not a malformed response: %v", evalErr.Err)
	}
	// Budget is per parse target; the first dimension alone consumed it.
	if client.Calls() != 2 {
		t.Errorf("oracle calls = %d, want 2", client.Calls())
	}
}

func TestEvaluator_TransportErrorsConsumeBudget(t *testing.T) {
	client := &llm.MockClient{
		Responses: []string{goodDimensionResponse},
		Errs:      map[int]error{0: fmt.Errorf("connection reset by peer")},
	}
	config := DefaultEvaluatorConfig()
	config.NumRetries = 2
	evaluator := NewEvaluator(client, config, nil)

	report, err := evaluator.Evaluate(context.Background(), "x = 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Scores) != 10 {
		t.Errorf("got %d scores, want 10", len(report.Scores))
	}
}

func TestEvaluator_RejectsOutOfRangeStatementScores(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"```json\n{\"insight\": \"bad\", \"scores\": [2, 1, 0, 1, 1]}\n```",
	}}
	config := DefaultEvaluatorConfig()
	config.NumRetries = 1
	evaluator := NewEvaluator(client, config, nil)

	if _, err := evaluator.Evaluate(context.Background(), "x = 1"); err == nil {
		t.Fatal("statement score outside {-1, 0, 1} accepted")
	}
}

func TestEvaluator_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &llm.MockClient{Responses: []string{goodDimensionResponse}}
	evaluator := NewEvaluator(client, DefaultEvaluatorConfig(), nil)

	if _, err := evaluator.Evaluate(ctx, "x = 1"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if client.Calls() != 0 {
		t.Errorf("oracle calls = %d, want 0", client.Calls())
	}
}
