package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/prose-humanizer/internal/observability"
	"github.com/jonathan/prose-humanizer/internal/pipeline"
)

type detectOptions struct {
	inPath     string
	urlStr     string
	language   string
	asJSON     bool
	useBrowser bool
	verbose    bool
}

func newDetectCmd() *cobra.Command {
	opts := &detectOptions{}
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Score a document for machine-generation markers",
		Long:  "Score a document read from a file, stdin (--in -) or a URL and report a 0-100 score with a verdict.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDetect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.inPath, "in", "", "Input text file, or - for stdin (mutually exclusive with --url)")
	cmd.Flags().StringVarP(&opts.urlStr, "url", "u", "", "URL to fetch the document from (mutually exclusive with --in)")
	cmd.Flags().StringVarP(&opts.language, "lang", "l", "auto", "Language code, or auto to detect")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the detection as JSON")
	cmd.Flags().BoolVar(&opts.useBrowser, "browser", false, "Use headless browser for client-rendered pages (requires Chrome)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed debug information")
	return cmd
}

func runDetect(cmd *cobra.Command, opts *detectOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, _, err := readInput(ctx, cmd, opts.inPath, opts.urlStr, opts.useBrowser, opts.verbose)
	if err != nil {
		return err
	}

	detection := pipeline.New(pipeline.WithVerbose(opts.verbose)).Detect(text, opts.language)
	if opts.asJSON {
		return writeJSON(cmd.OutOrStdout(), detection)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintDetection(detection)
	return nil
}
