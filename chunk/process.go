package chunk

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GenerateFunc transforms one segment into one output string. It is the only
// capability the processor needs from the generation collaborator.
type GenerateFunc func(ctx context.Context, segment string) (string, error)

// Processor feeds arbitrarily long text through a fixed-context generation
// collaborator: split under a token budget, generate per segment, reassemble
// in original segment order.
type Processor struct {
	splitter    Splitter
	counter     TokenCounter
	maxTokens   int
	concurrency int
	logger      *zap.Logger
}

// NewProcessor builds a processor. concurrency <= 1 means strictly
// sequential generation, which is the default mode: inference backends
// contend for the same model instance, so parallel calls rarely help.
func NewProcessor(splitter Splitter, counter TokenCounter, maxTokens, concurrency int, logger *zap.Logger) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{
		splitter:    splitter,
		counter:     counter,
		maxTokens:   maxTokens,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Process returns the full assembled output, or the first failure. Partial
// results are never returned.
func (p *Processor) Process(ctx context.Context, text string, generate GenerateFunc) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &SegmentationError{Reason: "empty input"}
	}

	// Input already fits the window: one call, unmodified text.
	if p.counter.Count(text) <= p.maxTokens {
		out, err := generate(ctx, text)
		if err != nil {
			return "", &GenerationFailure{Segment: 0, Err: err}
		}
		return out, nil
	}

	segments, err := p.splitter.Split(text)
	if err != nil {
		return "", err
	}

	p.logger.Debug("processing segments",
		zap.Int("count", len(segments)),
		zap.Int("max_tokens", p.maxTokens))

	results := make([]string, len(segments))
	done := make([]bool, len(segments))

	if p.concurrency <= 1 {
		for i, segment := range segments {
			out, err := generate(ctx, segment)
			if err != nil {
				return "", &GenerationFailure{Segment: i, Err: err}
			}
			results[i] = out
			done[i] = true
		}
	} else {
		// Results land at their segment index, so assembly order is
		// independent of completion order. The first failure cancels
		// everything in flight.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)
		for i, segment := range segments {
			g.Go(func() error {
				out, err := generate(gctx, segment)
				if err != nil {
					return &GenerationFailure{Segment: i, Err: err}
				}
				results[i] = out
				done[i] = true
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}
	}

	generated := 0
	for _, ok := range done {
		if ok {
			generated++
		}
	}
	if generated != len(segments) {
		return "", &AggregationError{Segments: len(segments), Results: generated}
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if trimmed := strings.TrimSpace(r); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " "), nil
}
