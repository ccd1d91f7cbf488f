package chunk

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Splitter breaks input text into ordered, non-overlapping segments. The
// concatenation of all segments reproduces the input modulo whitespace
// normalization at segment boundaries.
type Splitter interface {
	Split(text string) ([]string, error)
}

// SentenceSplitter packs consecutive sentences into segments that stay under
// a token budget. Sentences are never split: a single sentence over budget
// becomes its own oversized segment and the generation collaborator applies
// its own truncation.
type SentenceSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	counter   TokenCounter
	maxTokens int
}

func NewSentenceSplitter(maxTokens int, counter TokenCounter) (*SentenceSplitter, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("maxTokens must be positive, got %d", maxTokens)
	}
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sentence tokenizer: %w", err)
	}
	return &SentenceSplitter{
		tokenizer: tokenizer,
		counter:   counter,
		maxTokens: maxTokens,
	}, nil
}

func (s *SentenceSplitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &SegmentationError{Reason: "empty input"}
	}

	var segments []string
	var current string

	for _, sentence := range s.tokenizer.Tokenize(text) {
		sent := strings.TrimSpace(sentence.Text)
		if sent == "" {
			continue
		}
		if current == "" {
			current = sent
			continue
		}

		candidate := current + " " + sent
		if s.counter.Count(candidate) > s.maxTokens {
			segments = append(segments, current)
			current = sent
		} else {
			current = candidate
		}
	}

	if current != "" {
		segments = append(segments, current)
	}
	if len(segments) == 0 {
		return nil, &SegmentationError{Reason: "no sentences found"}
	}
	return segments, nil
}
