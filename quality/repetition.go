package quality

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kljensen/snowball"
)

// WordRepetition is one over-used word: the surface form shown to the user,
// its stem-level count and its share of content words.
type WordRepetition struct {
	Word  string  `json:"word"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// Repetition summarizes repetitive wording in a text.
type Repetition struct {
	TopGlobal  []WordRepetition `json:"top_global_repetitions"`
	LocalScore float64          `json:"local_repetition_score"`
	Total      int              `json:"total_repetitions_found"`
}

// RepetitionDetector finds over-used stems, globally and within a sliding
// proximity window. Stems group inflections ("use", "using", "used").
type RepetitionDetector struct {
	stopWords map[string]struct{}
	wordRe    *regexp.Regexp
}

func NewRepetitionDetector() *RepetitionDetector {
	stopList := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
		"is", "are", "was", "were", "be", "been", "being",
		"it", "this", "that", "these", "those",
		"i", "you", "he", "she", "they", "we",
		"will", "would", "can", "could", "should", "may", "might",
		"have", "has", "had", "do", "does", "did",
		"not", "no", "yes", "as", "by", "from", "so", "if", "than", "then",
	}
	stopWords := make(map[string]struct{}, len(stopList))
	for _, w := range stopList {
		stopWords[w] = struct{}{}
	}
	return &RepetitionDetector{
		stopWords: stopWords,
		wordRe:    regexp.MustCompile(`[a-z]+`),
	}
}

// Detect analyzes text with the default 50-word proximity window.
func (d *RepetitionDetector) Detect(text string) Repetition {
	return d.DetectWindow(text, 50)
}

func (d *RepetitionDetector) DetectWindow(text string, windowSize int) Repetition {
	contentWords := d.contentWords(text)
	if len(contentWords) == 0 {
		return Repetition{}
	}

	stems := make([]string, len(contentWords))
	stemToWord := make(map[string]string)
	for i, w := range contentWords {
		stem, err := snowball.Stem(w, "english", true)
		if err != nil {
			stem = w
		}
		stems[i] = stem
		if _, ok := stemToWord[stem]; !ok {
			stemToWord[stem] = w
		}
	}

	counts := make(map[string]int)
	for _, stem := range stems {
		counts[stem]++
	}

	// A word is over-used when it shows up more than expected for the
	// text's length.
	threshold := len(contentWords) / 20
	if threshold < 3 {
		threshold = 3
	}

	type stemCount struct {
		stem  string
		count int
	}
	ordered := make([]stemCount, 0, len(counts))
	for stem, count := range counts {
		ordered = append(ordered, stemCount{stem, count})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].stem < ordered[j].stem
	})

	var topGlobal []WordRepetition
	globalTotal := 0
	for i := 0; i < len(ordered) && i < 5; i++ {
		if ordered[i].count < threshold {
			continue
		}
		topGlobal = append(topGlobal, WordRepetition{
			Word:  stemToWord[ordered[i].stem],
			Count: ordered[i].count,
			Ratio: float64(ordered[i].count) / float64(len(contentWords)),
		})
		globalTotal += ordered[i].count
	}

	// Local repeats: same stem again within the lookahead window.
	lookahead := windowSize / 5
	localCount := 0
	for i := range stems {
		end := i + 1 + lookahead
		if end > len(stems) {
			end = len(stems)
		}
		for j := i + 1; j < end; j++ {
			if stems[j] == stems[i] {
				localCount++
			}
		}
	}

	localScore := float64(localCount*10) / float64(len(contentWords))
	if localScore > 1 {
		localScore = 1
	}

	return Repetition{
		TopGlobal:  topGlobal,
		LocalScore: localScore,
		Total:      localCount + globalTotal,
	}
}

func (d *RepetitionDetector) contentWords(text string) []string {
	var words []string
	for _, match := range d.wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := d.stopWords[match]; stop {
			continue
		}
		words = append(words, match)
	}
	return words
}
