package quality

import (
	"context"
	"errors"
	"testing"

	questerrors "quest/internal/errors"
	"quest/internal/llm"
)

type stubChecker struct {
	ok    bool
	calls int
}

func (s *stubChecker) Check(code string) bool {
	s.calls++
	return s.ok
}

type stubRunner struct {
	ok    bool
	calls int
}

func (s *stubRunner) Run(_ context.Context, code string) bool {
	s.calls++
	return s.ok
}

const goodOptimizerResponse = "```json\n" +
	`{"improvement_points": ["rename x", "add docstring"], "explanation_report": ["clearer intent"]}` +
	"\n```\n\n```improved_code\ndef add(a, b):\n    return a + b\n```"

func TestOptimizer_HappyPath(t *testing.T) {
	client := &llm.MockClient{Responses: []string{goodOptimizerResponse}}
	checker := &stubChecker{ok: true}
	runner := &stubRunner{ok: true}
	optimizer := NewOptimizer(client, DefaultOptimizerConfig(), checker, runner)

	result, err := optimizer.Optimize(context.Background(), "def add(a,b): return a+b", "[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Code != "def add(a, b):\n    return a + b" {
		t.Errorf("unexpected candidate: %q", result.Code)
	}
	if !result.SyntaxOK || !result.TestsOK || !result.TestsRan {
		t.Errorf("verdicts: syntax=%t tests=%t ran=%t", result.SyntaxOK, result.TestsOK, result.TestsRan)
	}
	if len(result.ImprovementPoints) != 2 || len(result.Explanations) != 1 {
		t.Errorf("report not extracted: %+v", result)
	}
	if checker.calls != 1 || runner.calls != 1 {
		t.Errorf("checker calls=%d runner calls=%d, want 1 each", checker.calls, runner.calls)
	}
}

func TestOptimizer_SyntaxFailureSkipsTests(t *testing.T) {
	client := &llm.MockClient{Responses: []string{goodOptimizerResponse}}
	checker := &stubChecker{ok: false}
	runner := &stubRunner{ok: true}
	optimizer := NewOptimizer(client, DefaultOptimizerConfig(), checker, runner)

	result, err := optimizer.Optimize(context.Background(), "x = 1", "[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SyntaxOK {
		t.Error("syntax verdict should be false")
	}
	if runner.calls != 0 {
		t.Error("tests must not run against an unparseable candidate")
	}
	if result.TestsRan {
		t.Error("TestsRan should be false when tests were skipped")
	}
}

func TestOptimizer_NilRunnerVacuouslyPasses(t *testing.T) {
	client := &llm.MockClient{Responses: []string{goodOptimizerResponse}}
	optimizer := NewOptimizer(client, DefaultOptimizerConfig(), &stubChecker{ok: true}, nil)

	result, err := optimizer.Optimize(context.Background(), "x = 1", "[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.TestsOK {
		t.Error("tests should vacuously pass without a runner")
	}
	if result.TestsRan {
		t.Error("TestsRan should be false without a runner")
	}
}

func TestOptimizer_RetriesMissingFence(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"Here is the code without a fence: x = 2",
		goodOptimizerResponse,
	}}
	config := DefaultOptimizerConfig()
	config.NumRetries = 2
	optimizer := NewOptimizer(client, config, nil, nil)

	result, err := optimizer.Optimize(context.Background(), "x = 1", "[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Calls() != 2 {
		t.Errorf("oracle calls = %d, want 2", client.Calls())
	}
	if result.Code == "" {
		t.Error("no candidate extracted on retry")
	}
}

func TestOptimizer_ExhaustedBudget(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"no fence here"}}
	config := DefaultOptimizerConfig()
	config.NumRetries = 3
	optimizer := NewOptimizer(client, config, nil, nil)

	_, err := optimizer.Optimize(context.Background(), "x = 1", "[]")
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	var optErr *questerrors.OptimizationError
	if !errors.As(err, &optErr) {
		t.Fatalf("expected OptimizationError, got: %v", err)
	}
	if optErr.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", optErr.Attempts)
	}
	if client.Calls() != 3 {
		t.Errorf("oracle calls = %d, want 3", client.Calls())
	}
}

func TestOptimizer_DamagedReportTolerated(t *testing.T) {
	// The candidate fence is intact but the JSON report is garbage; the
	// candidate is still usable.
	client := &llm.MockClient{Responses: []string{
		"some rambling with no json\n```improved_code\nx = 2\n```",
	}}
	optimizer := NewOptimizer(client, DefaultOptimizerConfig(), nil, nil)

	result, err := optimizer.Optimize(context.Background(), "x = 1", "[]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Code != "x = 2" {
		t.Errorf("candidate = %q, want %q", result.Code, "x = 2")
	}
	if len(result.ImprovementPoints) != 0 {
		t.Errorf("unexpected improvement points: %v", result.ImprovementPoints)
	}
}
