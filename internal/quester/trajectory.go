// Package quester implements the actor-critic loop controller: it drives the
// evaluator and optimizer over successive rounds, applies the acceptance
// policy, records the trajectory, and decides termination.
package quester

import (
	"time"

	"quest/internal/llm"
	"quest/internal/quality"
)

// State is the lifecycle state of one optimization run.
type State string

const (
	StateRunning   State = "running"
	StateConverged State = "converged"
	StateExhausted State = "exhausted"
	StateFailed    State = "failed"
)

// TrajectoryStep records one round: the code considered that round, its
// evaluation, the optimization attempt that produced it, and the accept or
// reject decision. Round 0 is the initial evaluation of the input code and
// carries no optimization. Steps are append-only.
type TrajectoryStep struct {
	Round        int                         `json:"round"`
	Code         string                      `json:"code"`
	Report       *quality.Report             `json:"report,omitempty"`
	Optimization *quality.OptimizationResult `json:"optimization,omitempty"`
	Accepted     bool                        `json:"accepted"`
	Note         string                      `json:"note,omitempty"`
}

// Aggregate returns the step's aggregate score, or 0 when the step carries
// no evaluation (rejected before re-evaluation).
func (s TrajectoryStep) Aggregate() float64 {
	if s.Report == nil {
		return 0
	}
	return s.Report.Aggregate()
}

// QuestResult is the final output of one run: the full trajectory, the last
// accepted version, and the termination reason.
type QuestResult struct {
	Trajectory []TrajectoryStep `json:"trajectory"`
	State      State            `json:"state"`
	Reason     string           `json:"reason"`
	// BestRound is the round index of the last accepted step, or -1 when no
	// candidate was ever accepted.
	BestRound int            `json:"best_round"`
	FinalCode string         `json:"final_code"`
	Usage     llm.TokenUsage `json:"usage"`
	Duration  time.Duration  `json:"duration"`
}

// lastAccepted returns the index of the last accepted step, or -1.
func lastAccepted(trajectory []TrajectoryStep) int {
	for i := len(trajectory) - 1; i >= 0; i-- {
		if trajectory[i].Accepted {
			return trajectory[i].Round
		}
	}
	return -1
}

// finalCode resolves the caller-consumable version: the code of the last
// accepted step, or the original input when none was accepted.
func finalCode(trajectory []TrajectoryStep, original string) string {
	for i := len(trajectory) - 1; i >= 0; i-- {
		if trajectory[i].Accepted {
			return trajectory[i].Code
		}
	}
	return original
}
