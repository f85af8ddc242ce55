package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"quest/internal/logging"
)

// RunnerConfig configures test execution against candidates.
type RunnerConfig struct {
	Language      Language
	TestCasesPath string        // pytest file/dir (python) or *_test.go file (go)
	PythonBinary  string        // default "python3"
	Timeout       time.Duration // per run; default 60s
}

// Runner executes supplied test cases against a candidate in a throwaway
// temp directory, as a subprocess with a bounded deadline. Any failure mode
// (non-zero exit, timeout, startup error) reports false; none are fatal.
type Runner struct {
	config RunnerConfig
	logger logging.Logger
}

// NewRunner constructs a Runner for the given test cases.
func NewRunner(config RunnerConfig) *Runner {
	if config.PythonBinary == "" {
		config.PythonBinary = "python3"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &Runner{
		config: config,
		logger: logging.NewComponentLogger("sandbox-runner"),
	}
}

// Run executes the configured test cases against the candidate code.
func (r *Runner) Run(ctx context.Context, code string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	workDir, err := os.MkdirTemp("", "quest-candidate-*")
	if err != nil {
		r.logger.Warn("create sandbox dir: %v", err)
		return false
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	var cmd *exec.Cmd
	switch r.config.Language {
	case LangGo:
		cmd, err = r.goTestCommand(ctx, workDir, code)
	default:
		cmd, err = r.pytestCommand(ctx, workDir, code)
	}
	if err != nil {
		r.logger.Warn("prepare test run: %v", err)
		return false
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		r.logger.Info("tests failed: %v\n%s", err, truncateOutput(output))
		return false
	}
	return true
}

// pytestCommand stages the candidate as a module and runs pytest with the
// --func_path option the test cases use to import it.
func (r *Runner) pytestCommand(ctx context.Context, workDir, code string) (*exec.Cmd, error) {
	candidatePath := filepath.Join(workDir, "candidate.py")
	if err := os.WriteFile(candidatePath, []byte(code), 0o644); err != nil {
		return nil, fmt.Errorf("write candidate: %w", err)
	}

	testsPath, err := filepath.Abs(r.config.TestCasesPath)
	if err != nil {
		return nil, fmt.Errorf("resolve test cases path: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.config.PythonBinary, "-m", "pytest",
		testsPath, "--tb", "short", "--func_path", "candidate")
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "PYTHONPATH="+workDir)
	return cmd, nil
}

// goTestCommand stages the candidate and the test file as a throwaway module
// and runs go test inside it.
func (r *Runner) goTestCommand(ctx context.Context, workDir, code string) (*exec.Cmd, error) {
	if err := os.WriteFile(filepath.Join(workDir, "candidate.go"), []byte(code), 0o644); err != nil {
		return nil, fmt.Errorf("write candidate: %w", err)
	}
	testSrc, err := os.ReadFile(r.config.TestCasesPath)
	if err != nil {
		return nil, fmt.Errorf("read test cases: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "candidate_test.go"), testSrc, 0o644); err != nil {
		return nil, fmt.Errorf("write test cases: %w", err)
	}
	gomod := "module candidate\n\ngo 1.24\n"
	if err := os.WriteFile(filepath.Join(workDir, "go.mod"), []byte(gomod), 0o644); err != nil {
		return nil, fmt.Errorf("write go.mod: %w", err)
	}

	cmd := exec.CommandContext(ctx, "go", "test", "./...")
	cmd.Dir = workDir
	return cmd, nil
}

func truncateOutput(output []byte) string {
	const limit = 2048
	s := strings.TrimSpace(string(output))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
