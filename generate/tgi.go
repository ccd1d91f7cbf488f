package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// TGIClient talks to a HuggingFace text-generation-inference server hosting
// one model.
type TGIClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewTGIClient(name, baseURL string, timeout time.Duration, maxRetries int) *TGIClient {
	return &TGIClient{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		baseDelay:  100 * time.Millisecond,
	}
}

type tgiParameters struct {
	MaxNewTokens      int     `json:"max_new_tokens,omitempty"`
	Temperature       float64 `json:"temperature,omitempty"`
	TopP              float64 `json:"top_p,omitempty"`
	TopK              int     `json:"top_k,omitempty"`
	DoSample          bool    `json:"do_sample"`
	NumBeams          int     `json:"num_beams,omitempty"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty"`
}

type tgiRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters tgiParameters `json:"parameters"`
}

type tgiResponse struct {
	GeneratedText string `json:"generated_text"`
}

func (c *TGIClient) Generate(ctx context.Context, req Request) (string, error) {
	out, err := c.generateWithRetry(ctx, req)
	if err != nil {
		return "", &ModelError{Model: c.name, Err: err}
	}
	return out, nil
}

func (c *TGIClient) generateWithRetry(ctx context.Context, req Request) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		out, err := c.generate(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoffDelay(attempt)):
			}
		}
	}

	return "", lastErr
}

func (c *TGIClient) backoffDelay(attempt int) time.Duration {
	delay := float64(c.baseDelay) * math.Pow(2, float64(attempt))

	// Up to 25% jitter so retries from parallel segments spread out.
	jitter := delay * 0.25 * (0.5 - (float64(time.Now().UnixNano()%1000) / 1000))

	return time.Duration(delay + jitter)
}

func (c *TGIClient) generate(ctx context.Context, req Request) (string, error) {
	body := tgiRequest{
		Inputs: req.Text,
		Parameters: tgiParameters{
			MaxNewTokens:      req.MaxNewTokens,
			Temperature:       req.Temperature,
			TopP:              req.TopP,
			TopK:              req.TopK,
			DoSample:          req.DoSample,
			NumBeams:          req.NumBeams,
			RepetitionPenalty: req.RepetitionPenalty,
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("inference service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var out tgiResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return out.GeneratedText, nil
}

func (c *TGIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
