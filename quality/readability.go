package quality

import (
	"strings"
	"unicode"
)

// FleschReadingEase computes the classic readability score:
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words).
// Higher is easier; typical English prose lands between 0 and 100.
func FleschReadingEase(text string) float64 {
	words := fieldsLetters(text)
	if len(words) == 0 {
		return 0
	}

	sentenceCount := countSentences(text)
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentenceCount)
	syllablesPerWord := float64(syllables) / float64(len(words))

	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// ReadabilityLabel buckets a Flesch score into the conventional bands.
func ReadabilityLabel(score float64) string {
	switch {
	case score >= 90:
		return "Very Easy"
	case score >= 80:
		return "Easy"
	case score >= 70:
		return "Fairly Easy"
	case score >= 60:
		return "Standard"
	case score >= 50:
		return "Fairly Difficult"
	case score >= 30:
		return "Difficult"
	default:
		return "Very Difficult"
	}
}

func countSentences(text string) int {
	count := 0
	inSentence := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if inSentence {
				count++
				inSentence = false
			}
		default:
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				inSentence = true
			}
		}
	}
	if inSentence {
		count++
	}
	return count
}

// countSyllables estimates syllables by counting vowel groups, with the
// usual silent-e adjustment. Every word has at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	isVowel := func(r rune) bool {
		return strings.ContainsRune("aeiouy", r)
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// fieldsLetters splits text into words, keeping only tokens that contain at
// least one letter.
func fieldsLetters(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		for _, r := range f {
			if unicode.IsLetter(r) {
				words = append(words, f)
				break
			}
		}
	}
	return words
}
