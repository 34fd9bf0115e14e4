package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/prose-humanizer/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page cannot be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrNoContent is returned when the page yields no text
	ErrNoContent = errors.New("no text content found")
)

// IngestFromURL fetches a page, extracts its main text, cleans it, and returns cleaned text with
// metadata. If useBrowser is true, falls back to a headless browser for client-rendered pages.
func IngestFromURL(ctx context.Context, urlStr string, useBrowser bool, verbose bool) (string, *Metadata, error) {
	text, platform, err := fetch.Document(ctx, urlStr, useBrowser, verbose)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	cleanedText := CleanText(text)
	if cleanedText == "" {
		return "", nil, fmt.Errorf("%w at %s", ErrNoContent, urlStr)
	}
	if verbose {
		log.Printf("[ingestion] %s: %d chars after cleaning", urlStr, len(cleanedText))
	}

	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)
	return cleanedText, metadata, nil
}
