package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quest/internal/config"
	questerrors "quest/internal/errors"
	"quest/internal/llm"
	"quest/internal/quality"
	"quest/internal/quester"
	"quest/internal/report"
	"quest/internal/sandbox"
)

func newRunCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <source-file>",
		Short: "Run the improvement loop on a single source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			code, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}

			q, storage, renderer, err := buildQuester(cfg, opts)
			if err != nil {
				return err
			}

			name := artifactName(args[0])
			result, runErr := q.Run(cmd.Context(), string(code))
			if result != nil {
				renderer.Render(name, result)
				if path, saveErr := storage.Save(name, result); saveErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: save trajectory: %v\n", saveErr)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Trajectory: %s\n", path)
				}
				ext := filepath.Ext(args[0])
				if err := report.WriteVersions(cfg.Output.Dir, name, ext, result); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: write versions: %v\n", err)
				}
			}
			return runErr
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

// artifactName derives the trajectory name from a source path.
func artifactName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// artifactNames derives one name per source path. Paths whose basenames
// collide, like a/util.py and b/util.py, get a positional suffix so their
// trajectories and version files do not overwrite each other.
func artifactNames(paths []string) []string {
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		counts[artifactName(p)]++
	}
	seen := make(map[string]int, len(paths))
	names := make([]string, len(paths))
	for i, p := range paths {
		name := artifactName(p)
		if counts[name] > 1 {
			seen[name]++
			name = fmt.Sprintf("%s_%d", name, seen[name])
		}
		names[i] = name
	}
	return names
}

// buildQuester wires the configured oracle, evaluator, optimizer and loop
// together. The dry-run flag swaps the HTTP client for the offline oracle.
func buildQuester(cfg *config.Config, opts *cliOptions) (*quester.Quester, *quester.Storage, *report.Renderer, error) {
	client, err := buildClient(cfg, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	var dims []quality.Dimension
	if cfg.Evaluator.RubricPath != "" {
		dims, err = quality.LoadRubric(cfg.Evaluator.RubricPath)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	evaluator := quality.NewEvaluator(client, quality.EvaluatorConfig{
		Strategy:    quality.Strategy(cfg.Evaluator.Strategy),
		NumRetries:  cfg.Evaluator.NumRetries,
		Temperature: cfg.Oracle.Temperature,
		MaxTokens:   cfg.Oracle.MaxTokens,
	}, dims)

	lang := sandbox.Language(cfg.Sandbox.Language)
	checker := sandbox.NewCachedChecker(
		sandbox.NewChecker(lang, cfg.Sandbox.PythonBinary, cfg.TestTimeout()), 256)

	var runner quality.TestRunner
	if opts.testsPath != "" {
		runner = sandbox.NewRunner(sandbox.RunnerConfig{
			Language:      lang,
			TestCasesPath: opts.testsPath,
			PythonBinary:  cfg.Sandbox.PythonBinary,
			Timeout:       cfg.TestTimeout(),
		})
	}

	optimizer := quality.NewOptimizer(client, quality.OptimizerConfig{
		NumRetries:  cfg.Optimizer.NumRetries,
		Temperature: cfg.Oracle.Temperature,
		MaxTokens:   cfg.Optimizer.MaxTokens,
		Baseline:    cfg.Evaluator.Strategy == "baseline",
	}, checker, runner)

	q := quester.New(evaluator, optimizer, quester.Config{
		MaxRounds:   cfg.Loop.MaxRounds,
		Tolerance:   cfg.Loop.Tolerance,
		TargetScore: cfg.Loop.TargetScore,
		Patience:    cfg.Loop.Patience,
	})

	storage, err := quester.NewStorage(cfg.Output.Dir)
	if err != nil {
		return nil, nil, nil, err
	}

	renderer := report.NewRenderer(os.Stdout, colorEnabled(opts))
	return q, storage, renderer, nil
}

func buildClient(cfg *config.Config, opts *cliOptions) (llm.Client, error) {
	if opts.dryRun {
		return newDryRunClient(), nil
	}
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no API key in $%s (or pass --dry-run)", cfg.Oracle.APIKeyEnv)
	}
	client, err := llm.NewOpenAIClient(cfg.Oracle.Model, llm.Config{
		APIKey:  apiKey,
		BaseURL: cfg.Oracle.BaseURL,
		Timeout: cfg.Oracle.TimeoutSecs,
	})
	if err != nil {
		return nil, err
	}
	retryConfig := questerrors.DefaultRetryConfig()
	if cfg.Oracle.MaxRetries > 0 {
		retryConfig.MaxAttempts = cfg.Oracle.MaxRetries
	}
	retryConfig.BaseDelay = time.Second
	return llm.NewRetryClient(client, retryConfig), nil
}
