package chunk

import (
	"errors"
	"strings"
	"testing"
)

// charCounter measures segments in characters, which keeps the packing
// arithmetic obvious in tests.
type charCounter struct{}

func (charCounter) Count(text string) int { return len(text) }

func TestSentenceSplitterPacksBySentence(t *testing.T) {
	splitter, err := NewSentenceSplitter(15, charCounter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	segments, err := splitter.Split("Sentence one. Sentence two. Sentence three.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"Sentence one.", "Sentence two.", "Sentence three."}
	if len(segments) != len(expected) {
		t.Fatalf("expected %d segments, got %d: %q", len(expected), len(segments), segments)
	}
	for i, seg := range segments {
		if seg != expected[i] {
			t.Errorf("segment %d: expected %q, got %q", i, expected[i], seg)
		}
	}
}

func TestSentenceSplitterGroupsUnderBudget(t *testing.T) {
	splitter, err := NewSentenceSplitter(30, charCounter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	segments, err := splitter.Split("Sentence one. Sentence two. Sentence three.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// "Sentence one. Sentence two." is 27 chars, adding the third would
	// exceed 30.
	expected := []string{"Sentence one. Sentence two.", "Sentence three."}
	if len(segments) != len(expected) {
		t.Fatalf("expected %d segments, got %d: %q", len(expected), len(segments), segments)
	}
	for i, seg := range segments {
		if seg != expected[i] {
			t.Errorf("segment %d: expected %q, got %q", i, expected[i], seg)
		}
	}
}

func TestSentenceSplitterReconstructsInput(t *testing.T) {
	input := "The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs! " +
		"How vexingly quick daft zebras jump? Sphinx of black quartz, judge my vow. " +
		"The five boxing wizards jump quickly."

	splitter, err := NewSentenceSplitter(60, charCounter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	segments, err := splitter.Split(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	normalize := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	if got := normalize(strings.Join(segments, " ")); got != normalize(input) {
		t.Errorf("segments do not reconstruct input:\n got: %q\nwant: %q", got, normalize(input))
	}
}

func TestSentenceSplitterBudgetRespected(t *testing.T) {
	input := "Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu. Nu xi omicron pi."

	splitter, err := NewSentenceSplitter(40, charCounter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	segments, err := splitter.Split(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, seg := range segments {
		if len(seg) > 40 {
			t.Errorf("segment %d exceeds budget: %d chars: %q", i, len(seg), seg)
		}
	}
}

func TestSentenceSplitterOversizedSentencePassesThrough(t *testing.T) {
	long := "This single sentence is far longer than the configured budget and must not be split in the middle."
	input := "Short one. " + long + " Short two."

	splitter, err := NewSentenceSplitter(20, charCounter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	segments, err := splitter.Split(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, seg := range segments {
		if seg == long {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized sentence was not passed through unmodified: %q", segments)
	}
}

func TestSentenceSplitterEmptyInput(t *testing.T) {
	splitter, err := NewSentenceSplitter(100, charCounter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := splitter.Split(input)
		var segErr *SegmentationError
		if !errors.As(err, &segErr) {
			t.Errorf("input %q: expected SegmentationError, got %v", input, err)
		}
	}
}

func TestNewSentenceSplitterRejectsBadBudget(t *testing.T) {
	if _, err := NewSentenceSplitter(0, charCounter{}); err == nil {
		t.Errorf("expected error for zero budget")
	}
}

func TestWordCounter(t *testing.T) {
	// 6 words / 0.75 = 8 estimated tokens.
	if got := (WordCounter{}).Count("one two three four five six"); got != 8 {
		t.Errorf("expected 8, got %d", got)
	}
	if got := (WordCounter{}).Count(""); got != 0 {
		t.Errorf("expected 0 for empty text, got %d", got)
	}
}
