package generate

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient generates through the Gemini API. Tokenization-level knobs
// (beams, ngram blocking) have no Gemini equivalent and are ignored.
type GeminiClient struct {
	name   string
	model  string
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, name, model, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{name: name, model: model, client: client}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		TopP:            genai.Ptr(float32(req.TopP)),
		MaxOutputTokens: int32(req.MaxNewTokens),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Text), cfg)
	if err != nil {
		return "", &ModelError{Model: c.name, Err: fmt.Errorf("generate content: %w", err)}
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", &ModelError{Model: c.name, Err: fmt.Errorf("empty response")}
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		return "", &ModelError{Model: c.name, Err: fmt.Errorf("no text in response")}
	}
	return text, nil
}

func (c *GeminiClient) Close() error {
	return nil
}
