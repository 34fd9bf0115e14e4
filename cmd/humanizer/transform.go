package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/prose-humanizer/internal/batch"
	"github.com/jonathan/prose-humanizer/internal/config"
	"github.com/jonathan/prose-humanizer/internal/db"
	"github.com/jonathan/prose-humanizer/internal/ingestion"
	"github.com/jonathan/prose-humanizer/internal/observability"
	"github.com/jonathan/prose-humanizer/internal/types"
)

type transformOptions struct {
	runOptions
	inPath  string
	urlStr  string
	outPath string
	asJSON  bool
}

func newTransformCmd() *cobra.Command {
	opts := &transformOptions{}
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Rewrite one document",
		Long: `Rewrite a document read from a file, stdin (--in -) or a URL and print the result.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTransform(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.inPath, "in", "", "Input text file, or - for stdin (mutually exclusive with --url)")
	cmd.Flags().StringVarP(&opts.urlStr, "url", "u", "", "URL to fetch the document from (mutually exclusive with --in)")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Write the text to this file and the full result to <file>.json")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full result as JSON instead of the text")
	opts.addFlags(cmd)
	return cmd
}

func runTransform(cmd *cobra.Command, opts *transformOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}
	text, _, err := readInput(ctx, cmd, opts.inPath, opts.urlStr, cfg.UseBrowser, cfg.Verbose)
	if err != nil {
		return err
	}

	pc := cfg.ToPipelineConfig()
	result, err := transformText(ctx, cfg, text, pc)
	if err != nil {
		return err
	}

	if cfg.DatabaseURL != "" {
		if err := saveRun(ctx, cfg.DatabaseURL, text, pc, &result); err != nil {
			return err
		}
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintResult(&result)
	}

	if opts.outPath != "" {
		dir, name := filepath.Split(opts.outPath)
		if dir == "" {
			dir = "."
		}
		if err := ingestion.WriteOutput(dir, name, result.Text, result); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s and %s.json (quality %.1f)\n", opts.outPath, opts.outPath, result.QualityScore)
		return nil
	}
	if opts.asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	return err
}

// transformText runs one document, splitting it into parallel chunks when it exceeds the chunk size
func transformText(ctx context.Context, cfg config.Config, text string, pc types.PipelineConfig) (types.PipelineResult, error) {
	p := newPipeline(cfg)
	if cfg.ChunkSize > 0 && len(text) > cfg.ChunkSize {
		runner := batch.New(p, batch.WithConcurrency(cfg.Concurrency), batch.WithVerbose(cfg.Verbose))
		result, err := runner.TransformChunked(ctx, text, cfg.ChunkSize, pc)
		if err != nil {
			return types.PipelineResult{}, fmt.Errorf("chunked transform failed: %w", err)
		}
		return result, nil
	}
	return p.Transform(text, pc), nil
}

// saveRun stores one result in the run history
func saveRun(ctx context.Context, databaseURL, text string, pc types.PipelineConfig, result *types.PipelineResult) error {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	if _, err := database.SaveRun(ctx, text, pc, result); err != nil {
		return err
	}
	return nil
}
