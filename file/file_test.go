package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadDocumentMarkdown(t *testing.T) {
	path := writeTempFile(t, "notes.md", "# Title\n\nSome text.")

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "notes.md", doc.Name)
	assert.Equal(t, "# Title\n\nSome text.", doc.Content)
	assert.True(t, doc.Markdown)
}

func TestReadDocumentPlainText(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "plain text")

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.False(t, doc.Markdown)
}

func TestReadDocumentRejectsUnknownExtension(t *testing.T) {
	path := writeTempFile(t, "image.png", "binarydata")

	_, err := ReadDocument(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file type")
}

func TestReadDocumentRejectsEmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.md", "")

	_, err := ReadDocument(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadDocumentRejectsMissingFile(t *testing.T) {
	_, err := ReadDocument(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadDocumentRejectsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.md")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0644))

	_, err := ReadDocument(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UTF-8")
}

func TestReadDocumentExtractsHTML(t *testing.T) {
	html := `<html><head><title>Post</title></head><body>
<article><h1>Post</h1><p>This is the main article body with enough words to be kept by the extractor.</p></article>
</body></html>`
	path := writeTempFile(t, "page.html", html)

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "main article body")
	assert.False(t, doc.Markdown)
}

func TestSaveResultSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveResult("content here", "My Draft (v2)!.md", dir)
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasSuffix(base, "_My_Draft_v2.md"), "got %q", base)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content here", string(data))
}

func TestInfo(t *testing.T) {
	path := writeTempFile(t, "small.txt", "abc")
	assert.Equal(t, "small.txt (3 bytes)", Info(path))

	assert.Equal(t, "file not found", Info(filepath.Join(t.TempDir(), "nope")))
}
