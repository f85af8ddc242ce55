package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"quest/internal/config"
	"quest/internal/logging"
)

// isTTY checks if the current environment has a TTY available.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// cliOptions carries flag state shared by the subcommands.
type cliOptions struct {
	configPath string
	verbose    bool
	noColor    bool

	model       string
	strategy    string
	lang        string
	testsPath   string
	rubricPath  string
	outDir      string
	maxRounds   int
	retries     int
	tolerance   float64
	patience    int
	targetScore float64
	dryRun      bool
	concurrency int
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "quest",
		Short: "Actor-critic code quality assessment and improvement",
		Long: "quest scores source code across ten quality dimensions using a language-model\n" +
			"oracle and iteratively revises it, accepting only validated, non-regressing\n" +
			"candidates.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logging.SetLevel(logging.LevelDebug)
			} else {
				logging.SetLevel(logging.LevelInfo)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to quest.yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colorized output")

	root.AddCommand(newRunCommand(opts))
	root.AddCommand(newBatchCommand(opts))

	return root
}

// addRunFlags registers the flags shared by run and batch.
func addRunFlags(cmd *cobra.Command, opts *cliOptions) {
	cmd.Flags().StringVar(&opts.model, "model", "", "oracle model name (overrides config)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "evaluation strategy: dimensions or baseline")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "target language: python or go")
	cmd.Flags().StringVar(&opts.testsPath, "tests", "", "path to test cases run against each candidate")
	cmd.Flags().StringVar(&opts.rubricPath, "rubric", "", "path to a YAML dimension rubric override")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory for trajectories and versions")
	cmd.Flags().IntVar(&opts.maxRounds, "max-rounds", 0, "optimization round budget")
	cmd.Flags().IntVar(&opts.retries, "retries", 0, "oracle retry budget per parse target")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", -1, "acceptance tolerance for score regressions")
	cmd.Flags().IntVar(&opts.patience, "patience", -1, "non-improving rounds before convergence (0 disables)")
	cmd.Flags().Float64Var(&opts.targetScore, "target-score", -2, "aggregate ceiling in [-1, 1]")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "use the offline mock oracle")
}

// loadConfig resolves the effective configuration: defaults, then config
// file, then QUEST_* environment, then explicit flags.
func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	v := viper.New()
	v.SetEnvPrefix("QUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if model := v.GetString("MODEL"); model != "" {
		cfg.Oracle.Model = model
	}
	if baseURL := v.GetString("BASE_URL"); baseURL != "" {
		cfg.Oracle.BaseURL = baseURL
	}

	if opts.model != "" {
		cfg.Oracle.Model = opts.model
	}
	if opts.strategy != "" {
		cfg.Evaluator.Strategy = opts.strategy
	}
	if opts.lang != "" {
		cfg.Sandbox.Language = opts.lang
	}
	if opts.rubricPath != "" {
		cfg.Evaluator.RubricPath = opts.rubricPath
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.maxRounds > 0 {
		cfg.Loop.MaxRounds = opts.maxRounds
	}
	if opts.retries > 0 {
		cfg.Evaluator.NumRetries = opts.retries
		cfg.Optimizer.NumRetries = opts.retries
	}
	if opts.tolerance >= 0 {
		cfg.Loop.Tolerance = opts.tolerance
	}
	if opts.patience >= 0 {
		cfg.Loop.Patience = opts.patience
	}
	if opts.targetScore >= -1 {
		cfg.Loop.TargetScore = opts.targetScore
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func colorEnabled(opts *cliOptions) bool {
	return !opts.noColor && isTTY()
}
