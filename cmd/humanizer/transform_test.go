package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prose-humanizer/internal/pipeline"
	"github.com/jonathan/prose-humanizer/internal/types"
)

const sampleDoc = "Furthermore, it is important to note that the release is ready. " +
	"Moreover, the team has tested every feature. In conclusion, we ship on Monday."

func TestTransformCommand_FileInput(t *testing.T) {
	in := writeFile(t, t.TempDir(), "post.txt", sampleDoc)

	stdout, _, err := runCLI(t, "", "transform", "--in", in, "--seed", "42")
	require.NoError(t, err)

	want := pipeline.New().Transform(sampleDoc, types.DefaultConfig().WithSeed(42)).Text
	assert.Equal(t, want+"\n", stdout)
}

func TestTransformCommand_Stdin(t *testing.T) {
	fromStdin, _, err := runCLI(t, sampleDoc+"\r\n", "transform", "--in", "-", "--seed", "7")
	require.NoError(t, err)

	in := writeFile(t, t.TempDir(), "post.txt", sampleDoc)
	fromFile, _, err := runCLI(t, "", "transform", "--in", in, "--seed", "7")
	require.NoError(t, err)

	assert.Equal(t, fromFile, fromStdin)
}

func TestTransformCommand_JSON(t *testing.T) {
	in := writeFile(t, t.TempDir(), "post.txt", sampleDoc)

	stdout, _, err := runCLI(t, "", "transform", "--in", in, "--seed", "3", "--profile", "formal",
		"--intensity", "80", "--keyword", "release", "--json")
	require.NoError(t, err)

	var result types.PipelineResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, int64(3), result.Seed)
	assert.Equal(t, "formal", result.Profile)
	assert.Equal(t, 80, result.Intensity)
	assert.Equal(t, "en", result.Language)
	assert.Contains(t, result.Text, "release")
}

func TestTransformCommand_OutFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "post.txt", sampleDoc)
	out := filepath.Join(dir, "out", "post.txt")

	stdout, stderr, err := runCLI(t, "", "transform", "--in", in, "--out", out, "--seed", "1")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Wrote")

	text, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEmpty(t, text)

	data, err := os.ReadFile(out + ".json")
	require.NoError(t, err)
	var result types.PipelineResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, string(text), result.Text)
}

func TestTransformCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "post.txt", sampleDoc)
	cfgPath := writeFile(t, dir, "config.json", `{"profile": "academic", "seed": 5, "intensity": 30}`)

	stdout, _, err := runCLI(t, "", "transform", "--in", in, "--config", cfgPath, "--profile", "chat", "--json")
	require.NoError(t, err)

	var result types.PipelineResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "chat", result.Profile, "flag should override config file")
	assert.Equal(t, int64(5), result.Seed)
	assert.Equal(t, 30, result.Intensity)
}

func TestTransformCommand_Chunked(t *testing.T) {
	doc := sampleDoc + "\n\n" + sampleDoc + "\n\n" + sampleDoc
	in := writeFile(t, t.TempDir(), "long.txt", doc)

	first, _, err := runCLI(t, "", "transform", "--in", in, "--seed", "11", "--chunk-size", "200", "--concurrency", "2")
	require.NoError(t, err)
	second, _, err := runCLI(t, "", "transform", "--in", in, "--seed", "11", "--chunk-size", "200", "--concurrency", "1")
	require.NoError(t, err)

	assert.NotEmpty(t, strings.TrimSpace(first))
	assert.Equal(t, first, second)
}

func TestTransformCommand_Verbose(t *testing.T) {
	in := writeFile(t, t.TempDir(), "post.txt", sampleDoc)

	_, stderr, err := runCLI(t, "", "transform", "--in", in, "--seed", "2", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stderr, "HUMANIZER RUN")
}

func TestTransformCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "post.txt", sampleDoc)
	badCfg := writeFile(t, dir, "bad.json", `{"intensity": "high"}`)

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Neither --in nor --url provided",
			args:        []string{"transform"},
			errorString: "either --in or --url must be provided",
		},
		{
			name:        "Both --in and --url provided",
			args:        []string{"transform", "--in", in, "--url", "https://example.com"},
			errorString: "mutually exclusive",
		},
		{
			name:        "Intensity out of range",
			args:        []string{"transform", "--in", in, "--intensity", "150"},
			errorString: "intensity",
		},
		{
			name:        "Unknown profile",
			args:        []string{"transform", "--in", in, "--profile", "pirate"},
			errorString: "unknown profile",
		},
		{
			name:        "Unknown unprotect category",
			args:        []string{"transform", "--in", in, "--unprotect", "tables"},
			errorString: "unknown span category",
		},
		{
			name:        "Zero max change",
			args:        []string{"transform", "--in", in, "--max-change", "0"},
			errorString: "--max-change must be greater than 0",
		},
		{
			name:        "Zero min sentence",
			args:        []string{"transform", "--in", in, "--min-sentence", "0"},
			errorString: "--min-sentence must be at least 1",
		},
		{
			name:        "Missing input file",
			args:        []string{"transform", "--in", filepath.Join(dir, "missing.txt")},
			errorString: "file not found",
		},
		{
			name:        "Invalid config file",
			args:        []string{"transform", "--in", in, "--config", badCfg},
			errorString: "failed to load config",
		},
		{
			name:        "Unexpected argument",
			args:        []string{"transform", "extra"},
			errorString: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestHumanizerBinary_Help(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "--help").CombinedOutput()
	require.NoError(t, err)
	for _, sub := range []string{"transform", "detect", "batch", "serve", "profiles"} {
		assert.Contains(t, string(output), sub)
	}
}
