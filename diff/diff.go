package diff

import (
	"fmt"
	"html"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Substitution is a single-word replacement surfaced for display.
type Substitution struct {
	Original  string `json:"original"`
	Generated string `json:"generated"`
}

// Stats summarizes how much of the original text survived generation.
type Stats struct {
	TotalOriginal       int            `json:"total_original"`
	TotalGenerated      int            `json:"total_generated"`
	Unchanged           int            `json:"unchanged"`
	Changed             int            `json:"changed"`
	Added               int            `json:"added"`
	Deleted             int            `json:"deleted"`
	PercentageChanged   float64        `json:"percentage_changed"`
	PercentageUnchanged float64        `json:"percentage_unchanged"`
	Substitutions       []Substitution `json:"substitutions"`
}

// Result carries the highlighted HTML for both texts plus diff statistics.
type Result struct {
	HighlightedOriginal  string `json:"highlighted_original"`
	HighlightedGenerated string `json:"highlighted_generated"`
	Stats                Stats  `json:"stats"`
}

const (
	removedSpan = `<span class="diff-removed">%s</span>`
	addedSpan   = `<span class="diff-added">%s</span>`
)

// maxSubstitutions caps the substitution list shown to the user.
const maxSubstitutions = 10

// Highlight diffs original and generated text word by word and renders both
// sides with changed regions wrapped in span markers.
func Highlight(original, generated string) Result {
	originalWords := strings.Fields(original)
	generatedWords := strings.Fields(generated)

	matcher := difflib.NewMatcher(originalWords, generatedWords)

	var highlightedOriginal, highlightedGenerated []string
	var stats Stats

	for _, op := range matcher.GetOpCodes() {
		originalChunk := html.EscapeString(strings.Join(originalWords[op.I1:op.I2], " "))
		generatedChunk := html.EscapeString(strings.Join(generatedWords[op.J1:op.J2], " "))

		switch op.Tag {
		case 'e':
			highlightedOriginal = append(highlightedOriginal, originalChunk)
			highlightedGenerated = append(highlightedGenerated, generatedChunk)
			stats.Unchanged += op.I2 - op.I1

		case 'r':
			highlightedOriginal = append(highlightedOriginal, fmt.Sprintf(removedSpan, originalChunk))
			highlightedGenerated = append(highlightedGenerated, fmt.Sprintf(addedSpan, generatedChunk))
			changed := op.I2 - op.I1
			if g := op.J2 - op.J1; g > changed {
				changed = g
			}
			stats.Changed += changed

			if op.I2-op.I1 == 1 && op.J2-op.J1 == 1 && len(stats.Substitutions) < maxSubstitutions {
				stats.Substitutions = append(stats.Substitutions, Substitution{
					Original:  originalWords[op.I1],
					Generated: generatedWords[op.J1],
				})
			}

		case 'd':
			highlightedOriginal = append(highlightedOriginal, fmt.Sprintf(removedSpan, originalChunk))
			stats.Deleted += op.I2 - op.I1

		case 'i':
			highlightedGenerated = append(highlightedGenerated, fmt.Sprintf(addedSpan, generatedChunk))
			stats.Added += op.J2 - op.J1
		}
	}

	stats.TotalOriginal = len(originalWords)
	stats.TotalGenerated = len(generatedWords)

	denom := stats.TotalOriginal
	if denom < 1 {
		denom = 1
	}
	stats.PercentageChanged = float64(stats.Changed+stats.Deleted+stats.Added) / float64(denom) * 100
	stats.PercentageUnchanged = float64(stats.Unchanged) / float64(denom) * 100

	return Result{
		HighlightedOriginal:  strings.Join(highlightedOriginal, " "),
		HighlightedGenerated: strings.Join(highlightedGenerated, " "),
		Stats:                stats,
	}
}
