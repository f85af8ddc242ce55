// Package config defines the explicit configuration structs passed into
// quest components and loads them from YAML. No process-wide mutable state;
// callers construct a Config once and hand it down.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// OracleConfig configures the language-model backend shared by the scoring
// and revision oracles.
type OracleConfig struct {
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries"`
}

// EvaluatorConfig configures the evaluation half of the loop.
type EvaluatorConfig struct {
	Strategy   string `yaml:"strategy"` // "dimensions" or "baseline"
	NumRetries int    `yaml:"num_retries"`
	RubricPath string `yaml:"rubric_path"`
}

// OptimizerConfig configures the revision half of the loop.
type OptimizerConfig struct {
	NumRetries int `yaml:"num_retries"`
	MaxTokens  int `yaml:"max_tokens"`
}

// LoopConfig configures the quester's acceptance and termination policy.
type LoopConfig struct {
	MaxRounds   int     `yaml:"max_rounds"`
	Tolerance   float64 `yaml:"tolerance"`
	TargetScore float64 `yaml:"target_score"`
	Patience    int     `yaml:"patience"`
}

// SandboxConfig configures syntax checking and test execution.
type SandboxConfig struct {
	Language        string `yaml:"language"` // "python" or "go"
	PythonBinary    string `yaml:"python_binary"`
	TestTimeoutSecs int    `yaml:"test_timeout_secs"`
}

// OutputConfig configures trajectory persistence and report output.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Config is the complete quest configuration.
type Config struct {
	Oracle    OracleConfig    `yaml:"oracle"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Loop      LoopConfig      `yaml:"loop"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Output    OutputConfig    `yaml:"output"`
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			Model:       "gpt-4o",
			APIKeyEnv:   "QUEST_API_KEY",
			Temperature: 0.2,
			MaxTokens:   2048,
			TimeoutSecs: 120,
			MaxRetries:  3,
		},
		Evaluator: EvaluatorConfig{
			Strategy:   "dimensions",
			NumRetries: 1,
		},
		Optimizer: OptimizerConfig{
			NumRetries: 1,
			MaxTokens:  4096,
		},
		Loop: LoopConfig{
			MaxRounds:   5,
			Tolerance:   0,
			TargetScore: 0.9,
			Patience:    2,
		},
		Sandbox: SandboxConfig{
			Language:        "python",
			PythonBinary:    "python3",
			TestTimeoutSecs: 60,
		},
		Output: OutputConfig{
			Dir: "quest-out",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Oracle.Model == "" {
		return fmt.Errorf("oracle.model is required")
	}
	switch c.Evaluator.Strategy {
	case "dimensions", "baseline":
	default:
		return fmt.Errorf("evaluator.strategy must be \"dimensions\" or \"baseline\", got %q", c.Evaluator.Strategy)
	}
	switch c.Sandbox.Language {
	case "python", "go":
	default:
		return fmt.Errorf("sandbox.language must be \"python\" or \"go\", got %q", c.Sandbox.Language)
	}
	if c.Loop.MaxRounds < 1 {
		return fmt.Errorf("loop.max_rounds must be at least 1")
	}
	if c.Loop.Tolerance < 0 {
		return fmt.Errorf("loop.tolerance must be non-negative")
	}
	if c.Loop.TargetScore < -1 || c.Loop.TargetScore > 1 {
		return fmt.Errorf("loop.target_score must be within [-1, 1]")
	}
	if c.Loop.Patience < 0 {
		return fmt.Errorf("loop.patience must be non-negative")
	}
	if c.Evaluator.NumRetries < 1 || c.Optimizer.NumRetries < 1 {
		return fmt.Errorf("num_retries must be at least 1")
	}
	return nil
}

// APIKey resolves the oracle API key from the configured environment
// variable.
func (c *Config) APIKey() string {
	if c.Oracle.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Oracle.APIKeyEnv)
}

// TestTimeout returns the sandbox timeout as a duration.
func (c *Config) TestTimeout() time.Duration {
	return time.Duration(c.Sandbox.TestTimeoutSecs) * time.Second
}
