package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/prose-humanizer/internal/config"
	"github.com/jonathan/prose-humanizer/internal/pipeline"
)

// runOptions holds the configuration flags shared by transform and batch.
type runOptions struct {
	configPath     string
	language       string
	profile        string
	intensity      int
	seed           int64
	keywords       []string
	brandTerms     []string
	unprotect      []string
	maxChange      float64
	minSentence    int
	chunkSize      int
	concurrency    int
	useBrowser     bool
	verbose        bool
	databaseURL    string
	rollbackErrors int
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&o.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVarP(&o.language, "lang", "l", "", "Language code, or auto to detect (default auto)")
	cmd.Flags().StringVarP(&o.profile, "profile", "p", "", "Style profile (default web)")
	cmd.Flags().IntVarP(&o.intensity, "intensity", "i", 0, "Rewrite intensity 0-100 (default 50)")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "Seed for reproducible output (random when unset)")
	cmd.Flags().StringSliceVarP(&o.keywords, "keyword", "k", nil, "Keyword that must survive verbatim (repeatable)")
	cmd.Flags().StringSliceVar(&o.brandTerms, "brand", nil, "Brand term that is never rewritten (repeatable)")
	cmd.Flags().StringSliceVar(&o.unprotect, "unprotect", nil, "Span category left unprotected: code_blocks, inline_code, markdown, urls, emails, html, hashtags, mentions")
	cmd.Flags().Float64Var(&o.maxChange, "max-change", 0, "Maximum fraction of words changed (default 0.7)")
	cmd.Flags().IntVar(&o.minSentence, "min-sentence", 0, "Minimum sentence length in words (default 3)")
	cmd.Flags().IntVar(&o.chunkSize, "chunk-size", 0, "Process texts longer than this many bytes in parallel chunks (0 disables)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 0, "Parallel workers (default GOMAXPROCS)")
	cmd.Flags().IntVar(&o.rollbackErrors, "rollback-threshold", 0, "Validation errors that trigger a rollback (default 2)")
	cmd.Flags().BoolVar(&o.useBrowser, "browser", false, "Use headless browser for client-rendered pages (requires Chrome)")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Print detailed debug information")

	// Database URL for run persistence
	cmd.Flags().StringVar(&o.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
}

// resolve loads the config file if given, applies explicitly set flags on top, fills defaults and
// validates the result.
func (o *runOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if o.verbose {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Loaded config from: %s\n", o.configPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.Language = o.language
	}
	if flags.Changed("profile") {
		cfg.Profile = o.profile
	}
	if flags.Changed("intensity") {
		intensity := o.intensity
		cfg.Intensity = &intensity
	}
	if flags.Changed("seed") {
		seed := o.seed
		cfg.Seed = &seed
	}
	if flags.Changed("keyword") {
		cfg.Keywords = o.keywords
	}
	if flags.Changed("brand") {
		cfg.BrandTerms = o.brandTerms
	}
	if flags.Changed("unprotect") {
		cfg.Unprotect = o.unprotect
	}
	if flags.Changed("max-change") {
		if o.maxChange <= 0 {
			return config.Config{}, fmt.Errorf("--max-change must be greater than 0, got %g", o.maxChange)
		}
		cfg.MaxChangeRatio = o.maxChange
	}
	if flags.Changed("min-sentence") {
		if o.minSentence < 1 {
			return config.Config{}, fmt.Errorf("--min-sentence must be at least 1, got %d", o.minSentence)
		}
		cfg.MinSentenceLength = o.minSentence
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = o.chunkSize
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if flags.Changed("rollback-threshold") {
		cfg.RollbackThreshold = o.rollbackErrors
	}
	if flags.Changed("browser") {
		cfg.UseBrowser = o.useBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = o.databaseURL
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Config{DatabaseURL: os.Getenv("DATABASE_URL")})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newPipeline builds a pipeline for the resolved configuration
func newPipeline(cfg config.Config) *pipeline.Pipeline {
	opts := []pipeline.Option{pipeline.WithVerbose(cfg.Verbose)}
	if cfg.RollbackThreshold > 0 {
		opts = append(opts, pipeline.WithRollbackThreshold(cfg.RollbackThreshold))
	}
	return pipeline.New(opts...)
}
