package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"quest/internal/quester"
	"quest/internal/report"
)

func newBatchCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <source-file>...",
		Short: "Run independent improvement loops over several source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			names := artifactNames(args)
			items := make([]quester.BatchItem, 0, len(args))
			for i, path := range args {
				code, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read source %s: %w", path, err)
				}
				items = append(items, quester.BatchItem{
					Name: names[i],
					Code: string(code),
				})
			}

			q, storage, renderer, err := buildQuester(cfg, opts)
			if err != nil {
				return err
			}

			results := q.RunBatch(cmd.Context(), items, opts.concurrency)
			failed := 0
			for i, br := range results {
				if br.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", br.Name, br.Err)
				}
				if br.Result == nil {
					continue
				}
				renderer.Render(br.Name, br.Result)
				if _, saveErr := storage.Save(br.Name, br.Result); saveErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: save trajectory %s: %v\n", br.Name, saveErr)
				}
				ext := filepath.Ext(args[i])
				if err := report.WriteVersions(cfg.Output.Dir, br.Name, ext, br.Result); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: write versions %s: %v\n", br.Name, err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d runs failed", failed, len(results))
			}
			return nil
		},
	}
	addRunFlags(cmd, opts)
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 2, "number of loops to run in parallel")
	return cmd
}
