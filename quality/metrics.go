package quality

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rephrase/embedding"
)

// Metrics is the quality report for one text.
type Metrics struct {
	GrammarIssues     int        `json:"grammar_issues"`
	PunctuationIssues int        `json:"punctuation_issues"`
	LogicalFlow       float64    `json:"logical_flow"`
	ReadabilityScore  float64    `json:"readability_score"`
	ReadabilityLabel  string     `json:"readability_label"`
	Repetition        Repetition `json:"repetition"`
}

// Scorer computes quality metrics. The grammar checker and embedding client
// are optional collaborators: when absent or failing, their metrics degrade
// to neutral values instead of failing the whole analysis.
type Scorer struct {
	grammar    GrammarChecker
	embed      embedding.Client
	repetition *RepetitionDetector
	logger     *zap.Logger
}

func NewScorer(grammar GrammarChecker, embed embedding.Client, logger *zap.Logger) *Scorer {
	return &Scorer{
		grammar:    grammar,
		embed:      embed,
		repetition: NewRepetitionDetector(),
		logger:     logger,
	}
}

// Score is pure given its inputs and its collaborators' answers.
func (s *Scorer) Score(ctx context.Context, text string) Metrics {
	if strings.TrimSpace(text) == "" {
		return Metrics{ReadabilityLabel: "N/A"}
	}

	var m Metrics

	if s.grammar != nil {
		issues, err := s.grammar.Check(ctx, text)
		if err != nil {
			s.logger.Warn("grammar check failed", zap.Error(err))
		} else {
			m.GrammarIssues = issues.Grammar
			m.PunctuationIssues = issues.Punctuation
		}
	}

	m.LogicalFlow = s.logicalFlow(ctx, text)
	m.ReadabilityScore = FleschReadingEase(text)
	m.ReadabilityLabel = ReadabilityLabel(m.ReadabilityScore)
	m.Repetition = s.repetition.Detect(text)

	return m
}

// logicalFlow is the mean cosine similarity between adjacent sentence
// embeddings. Single-sentence text is trivially coherent.
func (s *Scorer) logicalFlow(ctx context.Context, text string) float64 {
	if s.embed == nil {
		return 1.0
	}

	var sentences []string
	for _, part := range strings.Split(text, ".") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	if len(sentences) < 2 {
		return 1.0
	}

	vectors, err := s.embed.GetEmbeddings(ctx, sentences)
	if err != nil || len(vectors) != len(sentences) {
		s.logger.Warn("logical flow embedding failed", zap.Error(err))
		return 1.0
	}

	var sum float64
	for i := 0; i < len(vectors)-1; i++ {
		sum += embedding.CosineSimilarity(vectors[i], vectors[i+1])
	}
	return sum / float64(len(vectors)-1)
}

// Similarity scores how close the generated text stays to the original,
// as cosine similarity of their embeddings.
func (s *Scorer) Similarity(ctx context.Context, original, generated string) (float64, error) {
	if s.embed == nil {
		return 0, nil
	}

	vectors, err := s.embed.GetEmbeddings(ctx, []string{original, generated})
	if err != nil {
		return 0, fmt.Errorf("failed to embed texts: %w", err)
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("expected 2 embeddings, got %d", len(vectors))
	}
	return embedding.CosineSimilarity(vectors[0], vectors[1]), nil
}
