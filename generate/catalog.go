package generate

import (
	"fmt"
	"strings"
)

// Mode selects between rewriting text at similar length and growing it.
type Mode string

const (
	ModeParaphrase Mode = "Paraphrase"
	ModeExpand     Mode = "Expand"
)

// maxOutputCap bounds generation length regardless of input size.
const maxOutputCap = 1024

// ModelSpec identifies one configured model and how to reach it.
type ModelSpec struct {
	Name     string
	Endpoint string
	Model    string
}

// Catalog holds the configured paraphrase and expansion models, first entry
// per mode is the default.
type Catalog struct {
	paraphrase []ModelSpec
	expansion  []ModelSpec
}

func NewCatalog(paraphrase, expansion []ModelSpec) (*Catalog, error) {
	if len(paraphrase) == 0 || len(expansion) == 0 {
		return nil, fmt.Errorf("catalog needs at least one model per mode")
	}
	return &Catalog{paraphrase: paraphrase, expansion: expansion}, nil
}

// Resolve returns the spec for the named model in the given mode, falling
// back to the mode's default when the name is unknown or empty.
func (c *Catalog) Resolve(mode Mode, name string) (ModelSpec, bool) {
	specs := c.paraphrase
	if mode == ModeExpand {
		specs = c.expansion
	}
	for _, spec := range specs {
		if spec.Name == name {
			return spec, true
		}
	}
	return specs[0], false
}

// Names lists the model names available for a mode.
func (c *Catalog) Names(mode Mode) []string {
	specs := c.paraphrase
	if mode == ModeExpand {
		specs = c.expansion
	}
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}
	return names
}

// Prompt wraps a segment with the mode's instruction prefix. T5 paraphrase
// checkpoints expect the task prefix and an explicit end marker.
func Prompt(mode Mode, modelName, segment string, targetWords int) string {
	if mode == ModeExpand {
		if targetWords <= 0 {
			targetWords = 300
		}
		return fmt.Sprintf(
			"Expand the following text to approximately %d words, adding more details and context: %s",
			targetWords, segment)
	}
	if strings.Contains(modelName, "T5") {
		return "paraphrase: " + segment + " </s>"
	}
	return segment
}

// EstimateTokens approximates the token count of text (1 token ~ 0.75 words).
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) / 0.75)
}

// MaxNewTokens sizes the output window from the segment's input length so
// paraphrase and expansion outputs are not truncated relative to input size.
// baseMax is the caller-provided floor; the result never exceeds the cap.
func MaxNewTokens(segment string, mode Mode, baseMax int) int {
	inputTokens := EstimateTokens(segment)

	var calculated int
	if mode == ModeExpand {
		calculated = inputTokens*3 + 100
	} else {
		calculated = int(float64(inputTokens)*1.5) + 50
	}

	if calculated < baseMax {
		calculated = baseMax
	}
	if calculated > maxOutputCap {
		calculated = maxOutputCap
	}
	return calculated
}

// MinNewTokens keeps outputs from collapsing to a fraction of the input.
// Always at least 10 below maxNew so the window stays open.
func MinNewTokens(segment string, mode Mode, maxNew int) int {
	inputTokens := EstimateTokens(segment)

	var calculated int
	if mode == ModeExpand {
		calculated = int(float64(inputTokens) * 1.5)
	} else {
		calculated = int(float64(inputTokens) * 0.8)
	}

	if calculated > maxNew-10 {
		calculated = maxNew - 10
	}
	if calculated < 0 {
		calculated = 0
	}
	return calculated
}

// Params returns the per-mode generation preset tuned for the catalog's
// pretrained checkpoints.
func Params(mode Mode, temperature, topP float64, numBeams int) Request {
	req := Request{
		Temperature:       temperature,
		TopP:              topP,
		NumBeams:          numBeams,
		DoSample:          temperature > 0,
		RepetitionPenalty: 1.2,
	}
	if temperature <= 0 {
		req.Temperature = 1.0
	}
	if mode == ModeExpand {
		req.TopK = 50
		req.NoRepeatNgramSize = 3
		req.LengthPenalty = 1.5
	} else {
		req.TopK = 120
		req.NoRepeatNgramSize = 2
		req.LengthPenalty = 1.0
	}
	return req
}
