// Package pipeline orchestrates a full processing run: chunk the input,
// generate per segment, reassemble, then score, diff, log, and persist the
// result.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"rephrase/chunk"
	"rephrase/csvlog"
	"rephrase/diff"
	"rephrase/generate"
	"rephrase/history"
	"rephrase/markdown"
	"rephrase/quality"
)

// Request is one processing job. Zero-valued tuning fields fall back to the
// defaults below.
type Request struct {
	Text          string        `json:"text"`
	Mode          generate.Mode `json:"mode"`
	Model         string        `json:"model"`
	Temperature   float64       `json:"temperature"`
	TopP          float64       `json:"top_p"`
	BaseMaxLength int           `json:"max_length"`
	NumBeams      int           `json:"num_beams"`
	TargetWords   int           `json:"target_words"`
	Markdown      bool          `json:"markdown"`
}

const (
	defaultTemperature = 0.5
	defaultTopP        = 0.9
	defaultMaxLength   = 512
	defaultNumBeams    = 4
)

// Result is the full outcome of one run.
type Result struct {
	ID            string          `json:"id"`
	Mode          string          `json:"mode"`
	Model         string          `json:"model"`
	Output        string          `json:"output"`
	Similarity    float64         `json:"similarity"`
	InputQuality  quality.Metrics `json:"input_quality"`
	OutputQuality quality.Metrics `json:"output_quality"`
	Diff          diff.Result     `json:"diff"`
	ElapsedMS     int64           `json:"elapsed_ms"`
}

// Pipeline wires the processing stages together. The CSV logger and history
// store are optional; when nil those stages are skipped.
type Pipeline struct {
	processor *chunk.Processor
	catalog   *generate.Catalog
	cache     *generate.Cache
	scorer    *quality.Scorer
	csv       *csvlog.Logger
	store     *history.Store
	logger    *zap.Logger
}

func New(
	processor *chunk.Processor,
	catalog *generate.Catalog,
	cache *generate.Cache,
	scorer *quality.Scorer,
	csv *csvlog.Logger,
	store *history.Store,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		processor: processor,
		catalog:   catalog,
		cache:     cache,
		scorer:    scorer,
		csv:       csv,
		store:     store,
		logger:    logger,
	}
}

// Process runs a request end to end. Generation failures abort the run with
// no partial output; downstream bookkeeping failures are logged but do not
// fail a run that already produced text.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("input text is empty")
	}
	if req.Mode != generate.ModeParaphrase && req.Mode != generate.ModeExpand {
		return nil, fmt.Errorf("unknown mode %q", req.Mode)
	}
	applyDefaults(&req)

	spec, known := p.catalog.Resolve(req.Mode, req.Model)
	if !known && req.Model != "" {
		p.logger.Warn("unknown model requested, using default",
			zap.String("requested", req.Model),
			zap.String("default", spec.Name))
	}

	start := time.Now()
	generateSegment := p.segmentFunc(spec, req)

	var output string
	var err error
	if req.Markdown {
		output, err = p.processMarkdown(ctx, req.Text, generateSegment)
	} else {
		output, err = p.processor.Process(ctx, req.Text, generateSegment)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Mode:      string(req.Mode),
		Model:     spec.Name,
		Output:    output,
		ElapsedMS: time.Since(start).Milliseconds(),
	}

	result.InputQuality = p.scorer.Score(ctx, req.Text)
	result.OutputQuality = p.scorer.Score(ctx, output)

	similarity, err := p.scorer.Similarity(ctx, req.Text, output)
	if err != nil {
		p.logger.Warn("similarity scoring failed", zap.Error(err))
	}
	result.Similarity = similarity

	// Markdown structure would dominate a word diff, so diff prose runs only.
	result.Diff = diff.Highlight(req.Text, output)

	p.record(result, req)
	return result, nil
}

// Models lists the configured model names for a mode.
func (p *Pipeline) Models(mode generate.Mode) []string {
	return p.catalog.Names(mode)
}

// History exposes the run store for read access, nil when persistence is
// disabled.
func (p *Pipeline) History() *history.Store {
	return p.store
}

// segmentFunc binds the resolved model and tuning parameters into the
// per-segment generation closure handed to the chunk processor.
func (p *Pipeline) segmentFunc(spec generate.ModelSpec, req Request) chunk.GenerateFunc {
	return func(ctx context.Context, segment string) (string, error) {
		gen, err := p.cache.Get(spec)
		if err != nil {
			return "", err
		}

		greq := generate.Params(req.Mode, req.Temperature, req.TopP, req.NumBeams)
		greq.Text = generate.Prompt(req.Mode, spec.Name, segment, req.TargetWords)
		greq.MaxNewTokens = generate.MaxNewTokens(segment, req.Mode, req.BaseMaxLength)
		greq.MinNewTokens = generate.MinNewTokens(segment, req.Mode, greq.MaxNewTokens)

		return gen.Generate(ctx, greq)
	}
}

// processMarkdown rewrites only the prose elements of a markdown document
// and reassembles it with structure intact.
func (p *Pipeline) processMarkdown(ctx context.Context, source string, generateSegment chunk.GenerateFunc) (string, error) {
	doc := markdown.Parse(source)
	texts := doc.ProcessableText()
	if len(texts) == 0 {
		return "", fmt.Errorf("document contains no processable text")
	}

	processed := make(map[int]string, len(texts))
	for _, pt := range texts {
		stripped, preserved := markdown.PreserveInline(pt.Text)
		out, err := p.processor.Process(ctx, stripped, generateSegment)
		if err != nil {
			return "", fmt.Errorf("element at line %d: %w", doc.Elements[pt.Index].Line, err)
		}
		processed[pt.Index] = markdown.RestoreInline(out, preserved)
	}

	return doc.Reconstruct(processed), nil
}

// record appends the CSV row and persists the run. Both stages are best
// effort once generation has succeeded.
func (p *Pipeline) record(result *Result, req Request) {
	if p.csv != nil {
		err := p.csv.Append(csvlog.Record{
			Timestamp:         time.Now(),
			Mode:              result.Mode,
			Model:             result.Model,
			InputWords:        len(strings.Fields(req.Text)),
			OutputWords:       len(strings.Fields(result.Output)),
			Similarity:        result.Similarity,
			PercentChanged:    result.Diff.Stats.PercentageChanged,
			GrammarIssues:     result.OutputQuality.GrammarIssues,
			PunctuationIssues: result.OutputQuality.PunctuationIssues,
			LogicalFlow:       result.OutputQuality.LogicalFlow,
			Readability:       result.OutputQuality.ReadabilityScore,
		})
		if err != nil {
			p.logger.Warn("csv logging failed", zap.Error(err))
		}
	}

	if p.store != nil {
		id, err := p.store.Put(history.Record{
			Mode:       result.Mode,
			Model:      result.Model,
			Input:      req.Text,
			Output:     result.Output,
			Similarity: result.Similarity,
		})
		if err != nil {
			p.logger.Warn("history persistence failed", zap.Error(err))
		} else {
			result.ID = id
		}
	}
}

func applyDefaults(req *Request) {
	if req.Temperature <= 0 {
		req.Temperature = defaultTemperature
	}
	if req.TopP <= 0 {
		req.TopP = defaultTopP
	}
	if req.BaseMaxLength <= 0 {
		req.BaseMaxLength = defaultMaxLength
	}
	if req.NumBeams <= 0 {
		req.NumBeams = defaultNumBeams
	}
	if req.Mode == generate.ModeExpand && req.TargetWords <= 0 {
		req.TargetWords = 300
	}
}
