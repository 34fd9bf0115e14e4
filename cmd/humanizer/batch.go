package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/prose-humanizer/internal/batch"
	"github.com/jonathan/prose-humanizer/internal/db"
	"github.com/jonathan/prose-humanizer/internal/ingestion"
)

type batchOptions struct {
	runOptions
	inDir  string
	outDir string
}

func newBatchCmd() *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Rewrite every file in a directory in parallel",
		Long: `Rewrite every regular file in --in-dir and write the text and JSON result of each to --out-dir.

With --seed, document i (in file name order) uses seed+i, so a batch reproduces exactly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.inDir, "in-dir", "", "Directory of input text files (required)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "Output directory (required)")
	_ = cmd.MarkFlagRequired("in-dir")
	_ = cmd.MarkFlagRequired("out-dir")
	opts.addFlags(cmd)
	return cmd
}

func runBatch(cmd *cobra.Command, opts *batchOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}

	names, err := listInputFiles(opts.inDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no input files found in %s", opts.inDir)
	}

	texts := make([]string, len(names))
	for i, name := range names {
		text, _, err := ingestion.IngestFromFile(filepath.Join(opts.inDir, name))
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", name, err)
		}
		texts[i] = text
	}

	pc := cfg.ToPipelineConfig()
	runner := batch.New(newPipeline(cfg), batch.WithConcurrency(cfg.Concurrency), batch.WithVerbose(cfg.Verbose))
	results, err := runner.TransformBatch(ctx, texts, pc)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for i, name := range names {
		result := results[i]
		if err := ingestion.WriteOutput(opts.outDir, name, result.Text, result); err != nil {
			return fmt.Errorf("failed to write output for %s: %w", name, err)
		}
		if database != nil {
			if _, err := database.SaveRun(ctx, texts[i], pc.WithSeed(result.Seed), &result); err != nil {
				return err
			}
		}
		status := "ok"
		if result.RolledBack {
			status = "rolled back"
		}
		_, _ = fmt.Fprintf(out, "%s: quality %.1f, changed %.1f%%, seed %d (%s)\n",
			name, result.QualityScore, result.ChangeRatio*100, result.Seed, status)
	}
	return nil
}

// listInputFiles returns the regular, non-hidden files of dir in name order
func listInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
