// Package ingestion reads input documents from files, readers and URLs and normalizes them for the
// pipeline.
package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var excessiveBlankLines = regexp.MustCompile(`\n{3,}`)

// CleanText normalizes line endings and blank lines while leaving the content of every line
// untouched apart from trailing whitespace. Spacing inside lines is the typography stage's job.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// 1. Drop a UTF-8 byte order mark
	content = strings.TrimPrefix(content, "\ufeff")

	// 2. Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	// 3. Trim trailing whitespace per line
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")

	// 4. Remove excessive blank lines (max 1 consecutive)
	content = excessiveBlankLines.ReplaceAllString(content, "\n\n")

	// 5. Trim leading blank lines and trailing whitespace from the entire content
	content = strings.TrimLeft(content, "\n")
	return strings.TrimRightFunc(content, func(r rune) bool { return r == '\n' || r == ' ' || r == '\t' })
}

// IngestFromReader reads all of r, cleans it, and returns cleaned text with metadata.
// source is recorded in the metadata (a file path or "-" for stdin).
func IngestFromReader(r io.Reader, source string) (string, *Metadata, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	cleanedText := CleanText(string(content))
	metadata := NewMetadata(cleanedText, "")
	metadata.Source = source
	return cleanedText, metadata, nil
}

// IngestFromFile reads a text file, cleans it, and returns cleaned text with metadata
func IngestFromFile(path string) (string, *Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return IngestFromReader(f, path)
}

// WriteOutput writes text to outDir/name and result as indented JSON to outDir/name.json.
func WriteOutput(outDir, name, text string, result any) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	textPath := filepath.Join(outDir, name)
	if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", textPath, err)
	}

	if result == nil {
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	resultPath := textPath + ".json"
	if err := os.WriteFile(resultPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", resultPath, err)
	}
	return nil
}
