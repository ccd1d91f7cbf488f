package chunk

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// MarkdownSplitter segments markdown documents along heading hierarchy using
// the langchaingo splitter, measured with the same TokenCounter as the
// sentence splitter. No overlap: segments never duplicate input text.
type MarkdownSplitter struct {
	counter   TokenCounter
	maxTokens int
}

func NewMarkdownSplitter(maxTokens int, counter TokenCounter) (*MarkdownSplitter, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("maxTokens must be positive, got %d", maxTokens)
	}
	return &MarkdownSplitter{counter: counter, maxTokens: maxTokens}, nil
}

func (m *MarkdownSplitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SegmentationError{Reason: "empty input"}
	}

	splitter := textsplitter.NewMarkdownTextSplitter(
		textsplitter.WithHeadingHierarchy(true),
		textsplitter.WithChunkSize(m.maxTokens),
		textsplitter.WithChunkOverlap(0),
		textsplitter.WithLenFunc(m.counter.Count),
	)

	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split markdown: %w", err)
	}

	segments := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	if len(segments) == 0 {
		return nil, &SegmentationError{Reason: "no segments produced"}
	}
	return segments, nil
}

// RecursiveSplitter falls back through paragraph, line, and word boundaries
// to fit plain text under the token budget. Useful for input with no
// sentence punctuation to split on.
type RecursiveSplitter struct {
	counter   TokenCounter
	maxTokens int
}

func NewRecursiveSplitter(maxTokens int, counter TokenCounter) (*RecursiveSplitter, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("maxTokens must be positive, got %d", maxTokens)
	}
	return &RecursiveSplitter{counter: counter, maxTokens: maxTokens}, nil
}

func (r *RecursiveSplitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SegmentationError{Reason: "empty input"}
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(r.maxTokens),
		textsplitter.WithChunkOverlap(0),
		textsplitter.WithLenFunc(r.counter.Count),
	)

	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	segments := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	if len(segments) == 0 {
		return nil, &SegmentationError{Reason: "no segments produced"}
	}
	return segments, nil
}
