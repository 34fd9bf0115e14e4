package ingestion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"line endings", "Line 1\r\nLine 2\rLine 3\nLine 4", "Line 1\nLine 2\nLine 3\nLine 4"},
		{"blank lines", "Line 1\n\n\n\n\nLine 2", "Line 1\n\nLine 2"},
		{"trailing spaces", "Line 1   \nLine 2\t\n", "Line 1\nLine 2"},
		{"byte order mark", "\ufeffHello.", "Hello."},
		{"inner spacing kept", "Line    with    spaces", "Line    with    spaces"},
		{"indentation kept", "\n\n    Indented line\n  Less indented", "    Indented line\n  Less indented"},
		{"markdown kept", "# Title\n- Item 1\n* Item 2", "# Title\n- Item 1\n* Item 2"},
		{"unicode", "Test with émojis 🚀 and spéciàl chàracters", "Test with émojis 🚀 and spéciàl chàracters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_CodeBlockSpacingSurvives(t *testing.T) {
	input := "Intro.\n\n```\nfunc main() {\n    fmt.Println(\"hi\")\n}\n```\n"
	assert.Equal(t, strings.TrimRight(input, "\n"), CleanText(input))
}

func TestIngestFromReader(t *testing.T) {
	text, metadata, err := IngestFromReader(strings.NewReader("Привет, мир.\r\nКак дела?\n\n\n"), "-")
	require.NoError(t, err)

	assert.Equal(t, "Привет, мир.\nКак дела?", text)
	assert.Equal(t, "-", metadata.Source)
	assert.Equal(t, "ru", metadata.Language)
	assert.Equal(t, 4, metadata.Words)
}

func TestIngestFromFile_Success(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Release notes\n\nWe shipped it."), 0644))

	cleanedText, metadata, err := IngestFromFile(testFile)
	require.NoError(t, err)

	assert.Equal(t, "# Release notes\n\nWe shipped it.", cleanedText)
	require.NotNil(t, metadata)
	assert.Equal(t, testFile, metadata.Source)
	assert.Len(t, metadata.Hash, 64)
	assert.Equal(t, "en", metadata.Language)
	assert.NotEmpty(t, metadata.Timestamp)
}

func TestIngestFromFile_FileNotFound(t *testing.T) {
	cleanedText, metadata, err := IngestFromFile("/nonexistent/file.txt")

	assert.Error(t, err)
	assert.Empty(t, cleanedText)
	assert.Nil(t, metadata)
	assert.Contains(t, err.Error(), "file not found")
}

func TestIngestFromFile_HashFollowsContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	c := filepath.Join(dir, "c.txt")
	require.NoError(t, os.WriteFile(a, []byte("Content 1"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("Content 2"), 0644))
	require.NoError(t, os.WriteFile(c, []byte("Content 1\r\n\r\n"), 0644))

	_, ma, err := IngestFromFile(a)
	require.NoError(t, err)
	_, mb, err := IngestFromFile(b)
	require.NoError(t, err)
	_, mc, err := IngestFromFile(c)
	require.NoError(t, err)

	assert.NotEqual(t, ma.Hash, mb.Hash)
	assert.Equal(t, ma.Hash, mc.Hash)
}

func TestWriteOutput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "nested", "out")

	err := WriteOutput(outDir, "post.md", "Hello.", map[string]any{"quality_score": 91.5})
	require.NoError(t, err)

	text, err := os.ReadFile(filepath.Join(outDir, "post.md"))
	require.NoError(t, err)
	assert.Equal(t, "Hello.", string(text))

	data, err := os.ReadFile(filepath.Join(outDir, "post.md.json"))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 91.5, decoded["quality_score"])
}

func TestWriteOutput_TextOnly(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, WriteOutput(outDir, "a.txt", "x", nil))

	_, err := os.Stat(filepath.Join(outDir, "a.txt.json"))
	assert.True(t, os.IsNotExist(err))
}
