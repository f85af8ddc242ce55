package quester

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// recordKind discriminates the JSONL records in a trajectory file.
const (
	recordKindResult = "result"
	recordKindStep   = "step"
)

// storageRecord is one line of a trajectory file: a result header followed
// by the steps in round order.
type storageRecord struct {
	Kind   string          `json:"kind"`
	Result *storedResult   `json:"result,omitempty"`
	Step   *TrajectoryStep `json:"step,omitempty"`
}

// storedResult is the QuestResult header without the (repeated) steps.
type storedResult struct {
	State     State         `json:"state"`
	Reason    string        `json:"reason"`
	BestRound int           `json:"best_round"`
	FinalCode string        `json:"final_code"`
	Duration  time.Duration `json:"duration"`
	SavedAt   time.Time     `json:"saved_at"`
}

// Storage persists run trajectories as JSONL files under a base directory,
// one file per run, for audit and replay. No run reads prior persisted state.
type Storage struct {
	baseDir string
	mu      sync.Mutex
}

// NewStorage creates the base directory if needed.
func NewStorage(baseDir string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create trajectory dir: %w", err)
	}
	return &Storage{baseDir: baseDir}, nil
}

// Save writes the result and its trajectory to <name>.jsonl, overwriting any
// previous file for the same name.
func (s *Storage) Save(name string, result *QuestResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.baseDir, name+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	header := storageRecord{
		Kind: recordKindResult,
		Result: &storedResult{
			State:     result.State,
			Reason:    result.Reason,
			BestRound: result.BestRound,
			FinalCode: result.FinalCode,
			Duration:  result.Duration,
			SavedAt:   time.Now().UTC(),
		},
	}
	if err := writeRecord(w, header); err != nil {
		return "", err
	}
	for i := range result.Trajectory {
		step := result.Trajectory[i]
		if err := writeRecord(w, storageRecord{Kind: recordKindStep, Step: &step}); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// Load reads a trajectory file back into a QuestResult.
func (s *Storage) Load(name string) (*QuestResult, error) {
	path := filepath.Join(s.baseDir, name+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var result *QuestResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var record storageRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		switch record.Kind {
		case recordKindResult:
			if record.Result == nil {
				return nil, fmt.Errorf("%s line %d: empty result record", path, line)
			}
			result = &QuestResult{
				State:     record.Result.State,
				Reason:    record.Result.Reason,
				BestRound: record.Result.BestRound,
				FinalCode: record.Result.FinalCode,
				Duration:  record.Result.Duration,
			}
		case recordKindStep:
			if result == nil {
				return nil, fmt.Errorf("%s line %d: step before result header", path, line)
			}
			if record.Step == nil {
				return nil, fmt.Errorf("%s line %d: empty step record", path, line)
			}
			result.Trajectory = append(result.Trajectory, *record.Step)
		default:
			return nil, fmt.Errorf("%s line %d: unknown record kind %q", path, line, record.Kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%s: no result record", path)
	}
	return result, nil
}

func writeRecord(w *bufio.Writer, record storageRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
