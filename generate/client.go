package generate

import "context"

// Request carries one segment of input text and the generation parameters
// for the model invocation.
type Request struct {
	Text              string
	MaxNewTokens      int
	MinNewTokens      int
	Temperature       float64
	TopP              float64
	TopK              int
	NumBeams          int
	DoSample          bool
	NoRepeatNgramSize int
	RepetitionPenalty float64
	LengthPenalty     float64
}

// Generator is the generation collaborator: one segment in, one output text
// out. Implementations must be safe for sequential reuse and must release
// their resources on Close.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

// ModelError wraps an inference failure from the underlying model service.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	return "model " + e.Model + ": " + e.Err.Error()
}

func (e *ModelError) Unwrap() error {
	return e.Err
}
