package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/prose-humanizer/internal/ingestion"
)

// readInput ingests the document named by --in ("-" for stdin) or --url.
func readInput(ctx context.Context, cmd *cobra.Command, inPath, urlStr string, useBrowser, verbose bool) (string, *ingestion.Metadata, error) {
	if inPath == "" && urlStr == "" {
		return "", nil, fmt.Errorf("either --in or --url must be provided")
	}
	if inPath != "" && urlStr != "" {
		return "", nil, fmt.Errorf("--in and --url are mutually exclusive; provide only one")
	}

	if urlStr != "" {
		text, metadata, err := ingestion.IngestFromURL(ctx, urlStr, useBrowser, verbose)
		if err != nil {
			return "", nil, fmt.Errorf("failed to ingest from URL: %w", err)
		}
		return text, metadata, nil
	}
	if inPath == "-" {
		text, metadata, err := ingestion.IngestFromReader(cmd.InOrStdin(), "-")
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return text, metadata, nil
	}
	text, metadata, err := ingestion.IngestFromFile(inPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to ingest from file: %w", err)
	}
	return text, metadata, nil
}

// writeJSON writes v as indented JSON followed by a newline
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
