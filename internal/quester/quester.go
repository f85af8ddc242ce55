package quester

import (
	"context"
	"fmt"
	"time"

	"quest/internal/llm"
	"quest/internal/logging"
	"quest/internal/quality"
)

// Evaluator scores a code artifact. quality.Evaluator satisfies this.
type Evaluator interface {
	Evaluate(ctx context.Context, code string) (*quality.Report, error)
}

// Optimizer proposes a validated revision. quality.Optimizer satisfies this.
type Optimizer interface {
	Optimize(ctx context.Context, code, feedback string) (*quality.OptimizationResult, error)
}

// Config holds the loop's run parameters.
type Config struct {
	// MaxRounds is the optimization round budget (rounds 1..MaxRounds after
	// the round-0 evaluation).
	MaxRounds int
	// Tolerance is how much worse (in aggregate score) a candidate may be
	// than the current code and still be accepted. 0 accepts equal-or-better
	// and rejects any strict regression.
	Tolerance float64
	// TargetScore is the aggregate ceiling in [-1, 1]; reaching it converges
	// the run.
	TargetScore float64
	// Patience is how many consecutive rounds without an accepted
	// improvement are allowed before the run converges. 0 disables
	// convergence by stagnation.
	Patience int
}

// DefaultConfig mirrors the documented defaults: five rounds, strict
// no-regression acceptance, 0.9 ceiling, patience of two rounds.
func DefaultConfig() Config {
	return Config{
		MaxRounds:   5,
		Tolerance:   0,
		TargetScore: 0.9,
		Patience:    2,
	}
}

// Quester runs one actor-critic improvement loop per call. It exclusively
// owns the trajectory for the lifetime of a run; the evaluator and optimizer
// are stateless per-call collaborators.
type Quester struct {
	evaluator Evaluator
	optimizer Optimizer
	config    Config
	logger    logging.Logger
}

// New constructs a Quester.
func New(evaluator Evaluator, optimizer Optimizer, config Config) *Quester {
	if config.MaxRounds < 1 {
		config.MaxRounds = 1
	}
	return &Quester{
		evaluator: evaluator,
		optimizer: optimizer,
		config:    config,
		logger:    logging.NewComponentLogger("quester"),
	}
}

// Run drives the loop to a terminal state. Converged and Exhausted runs
// return a nil error; a Failed run returns the partial result alongside the
// fatal error. Cancellation is honored at round boundaries; an in-flight
// oracle call completes or times out on its own.
func (q *Quester) Run(ctx context.Context, code string) (*QuestResult, error) {
	start := time.Now()
	var (
		trajectory []TrajectoryStep
		usage      llm.TokenUsage
	)

	fail := func(round int, err error) (*QuestResult, error) {
		result := &QuestResult{
			Trajectory: trajectory,
			State:      StateFailed,
			Reason:     fmt.Sprintf("round %d: %v", round, err),
			BestRound:  lastAccepted(trajectory),
			FinalCode:  finalCode(trajectory, code),
			Usage:      usage,
			Duration:   time.Since(start),
		}
		return result, err
	}
	finish := func(state State, reason string) (*QuestResult, error) {
		q.logger.Info("run finished: state=%s reason=%q rounds=%d", state, reason, len(trajectory))
		return &QuestResult{
			Trajectory: trajectory,
			State:      state,
			Reason:     reason,
			BestRound:  lastAccepted(trajectory),
			FinalCode:  finalCode(trajectory, code),
			Usage:      usage,
			Duration:   time.Since(start),
		}, nil
	}

	// Round 0: initial evaluation of the input artifact.
	report, err := q.evaluator.Evaluate(ctx, code)
	if err != nil {
		return fail(0, err)
	}
	usage.Add(report.Usage)

	current := code
	currentReport := report
	currentScore := report.Aggregate()
	trajectory = append(trajectory, TrajectoryStep{Round: 0, Code: code, Report: report})
	q.logger.Info("round 0: aggregate=%.3f", currentScore)

	if currentScore >= q.config.TargetScore {
		return finish(StateConverged, fmt.Sprintf("initial aggregate %.3f already at target %.3f", currentScore, q.config.TargetScore))
	}

	stagnant := 0
	for round := 1; round <= q.config.MaxRounds; round++ {
		// Round boundary is the cancellation checkpoint.
		if err := ctx.Err(); err != nil {
			return fail(round, fmt.Errorf("run cancelled: %w", err))
		}

		step, fatalErr := q.runRound(ctx, round, current, currentReport, currentScore, &usage)
		if fatalErr != nil {
			return fail(round, fatalErr)
		}
		trajectory = append(trajectory, step)

		improved := false
		if step.Accepted {
			improved = step.Aggregate() > currentScore
			current = step.Code
			currentReport = step.Report
			currentScore = step.Aggregate()
		}
		if improved {
			stagnant = 0
		} else {
			stagnant++
		}

		if step.Accepted && currentScore >= q.config.TargetScore {
			return finish(StateConverged, fmt.Sprintf("aggregate %.3f reached target %.3f", currentScore, q.config.TargetScore))
		}
		if q.config.Patience > 0 && stagnant >= q.config.Patience {
			return finish(StateConverged, fmt.Sprintf("no improvement for %d consecutive rounds", stagnant))
		}
	}

	return finish(StateExhausted, fmt.Sprintf("round budget of %d exhausted", q.config.MaxRounds))
}

// runRound performs one optimize-validate-reevaluate cycle. A non-nil error
// is fatal to the run (evaluation failure); optimizer failures are absorbed
// into a rejected step.
func (q *Quester) runRound(ctx context.Context, round int, current string, currentReport *quality.Report, currentScore float64, usage *llm.TokenUsage) (TrajectoryStep, error) {
	feedback := quality.FormatFeedback(currentReport)

	optResult, err := q.optimizer.Optimize(ctx, current, feedback)
	if err != nil {
		// Recoverable: the prior accepted code remains valid.
		q.logger.Warn("round %d: optimizer failed, step rejected: %v", round, err)
		return TrajectoryStep{
			Round:    round,
			Code:     current,
			Accepted: false,
			Note:     fmt.Sprintf("optimizer failed: %v", err),
		}, nil
	}
	usage.Add(optResult.Usage)

	if !optResult.SyntaxOK {
		q.logger.Info("round %d: candidate rejected, syntax invalid", round)
		return TrajectoryStep{
			Round:        round,
			Code:         optResult.Code,
			Optimization: optResult,
			Accepted:     false,
			Note:         "candidate failed syntax check",
		}, nil
	}
	if !optResult.TestsOK {
		q.logger.Info("round %d: candidate rejected, tests failed", round)
		return TrajectoryStep{
			Round:        round,
			Code:         optResult.Code,
			Optimization: optResult,
			Accepted:     false,
			Note:         "candidate failed test cases",
		}, nil
	}

	// Re-evaluate the candidate; this score is the acceptance input and the
	// next round's feedback when accepted.
	candReport, err := q.evaluator.Evaluate(ctx, optResult.Code)
	if err != nil {
		return TrajectoryStep{}, err
	}
	usage.Add(candReport.Usage)

	candScore := candReport.Aggregate()
	accepted := candScore >= currentScore-q.config.Tolerance
	note := ""
	if !accepted {
		note = fmt.Sprintf("aggregate regressed %.3f -> %.3f beyond tolerance %.3f", currentScore, candScore, q.config.Tolerance)
	}
	q.logger.Info("round %d: candidate aggregate=%.3f current=%.3f accepted=%t", round, candScore, currentScore, accepted)

	return TrajectoryStep{
		Round:        round,
		Code:         optResult.Code,
		Report:       candReport,
		Optimization: optResult,
		Accepted:     accepted,
		Note:         note,
	}, nil
}
