// Package file reads, validates, and saves text documents submitted for
// processing.
package file

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

// MaxFileSize caps uploads at 10 MB.
const MaxFileSize = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
}

// Document is the text content of a validated input file.
type Document struct {
	Path     string
	Name     string
	Size     int64
	Content  string
	Markdown bool
}

// ReadDocument reads and validates an input file. HTML files are reduced to
// their readable article text; markdown and plain text pass through.
func ReadDocument(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("invalid file type %q, expected one of .md .markdown .txt .html", ext)
	}

	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("file too large: %.2fMB (max %dMB)",
			float64(info.Size())/(1024*1024), MaxFileSize/(1024*1024))
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8: %s", path)
	}

	content := string(data)
	if ext == ".html" {
		content, err = extractArticle(content)
		if err != nil {
			return nil, err
		}
	}

	return &Document{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		Content:  content,
		Markdown: ext == ".md" || ext == ".markdown",
	}, nil
}

func extractArticle(htmlContent string) (string, error) {
	pageURL, err := url.Parse("file:///local")
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(htmlContent), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract article text: %w", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return "", fmt.Errorf("no readable text found in HTML document")
	}
	return article.TextContent, nil
}

var unsafeChars = regexp.MustCompile(`[^\w\s-]`)

// SaveResult writes processed content next to a timestamped, sanitized copy
// of the original filename and returns the saved path.
func SaveResult(content, originalName, dir string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	stem = strings.ReplaceAll(strings.TrimSpace(unsafeChars.ReplaceAllString(stem, "")), " ", "_")
	if stem == "" {
		stem = "document"
	}

	name := fmt.Sprintf("%s_%s.md", time.Now().Format("20060102_150405"), stem)
	path := filepath.Join(dir, name)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path, nil
}

// Info returns a human readable name and size line for a file.
func Info(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "file not found"
	}

	size := info.Size()
	var sizeStr string
	switch {
	case size < 1024:
		sizeStr = fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		sizeStr = fmt.Sprintf("%.2f KB", float64(size)/1024)
	default:
		sizeStr = fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
	}

	return fmt.Sprintf("%s (%s)", filepath.Base(path), sizeStr)
}
