package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GrammarIssues is the issue count split LanguageTool gives us: punctuation
// matches versus everything else.
type GrammarIssues struct {
	Grammar     int
	Punctuation int
}

// GrammarChecker reports grammar and punctuation issues for a text.
type GrammarChecker interface {
	Check(ctx context.Context, text string) (GrammarIssues, error)
}

// LanguageToolClient checks text against a LanguageTool HTTP server.
type LanguageToolClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

func NewLanguageToolClient(baseURL, language string) *LanguageToolClient {
	return &LanguageToolClient{
		baseURL:  baseURL,
		language: language,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type ltMatch struct {
	Rule struct {
		ID        string `json:"id"`
		IssueType string `json:"issueType"`
		Category  struct {
			ID string `json:"id"`
		} `json:"category"`
	} `json:"rule"`
}

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

func (c *LanguageToolClient) Check(ctx context.Context, text string) (GrammarIssues, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/check",
		strings.NewReader(form.Encode()))
	if err != nil {
		return GrammarIssues{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return GrammarIssues{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return GrammarIssues{}, fmt.Errorf("languagetool returned status %d: %s", resp.StatusCode, string(body))
	}

	var out ltResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return GrammarIssues{}, fmt.Errorf("failed to decode response: %w", err)
	}

	var issues GrammarIssues
	for _, m := range out.Matches {
		if isPunctuation(m) {
			issues.Punctuation++
		} else {
			issues.Grammar++
		}
	}
	return issues, nil
}

func isPunctuation(m ltMatch) bool {
	kind := strings.ToUpper(m.Rule.Category.ID + " " + m.Rule.IssueType)
	return strings.Contains(kind, "PUNCTUATION")
}
