package chunk

import (
	"fmt"
	"strings"

	"github.com/daulet/tokenizers"
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures text in the same unit the generation collaborator
// uses for its input limit.
type TokenCounter interface {
	Count(text string) int
}

type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &TiktokenCounter{encoding: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// HFTokenizerCounter counts with a HuggingFace tokenizer.json so the budget
// matches the serving model exactly. Callers must Close it.
type HFTokenizerCounter struct {
	tokenizer *tokenizers.Tokenizer
}

func NewHFTokenizerCounter(tokenizerFilePath string) (*HFTokenizerCounter, error) {
	tk, err := tokenizers.FromFile(tokenizerFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer file: %w", err)
	}
	return &HFTokenizerCounter{tokenizer: tk}, nil
}

func (c *HFTokenizerCounter) Count(text string) int {
	ids, _ := c.tokenizer.Encode(text, false)
	return len(ids)
}

func (c *HFTokenizerCounter) Close() error {
	return c.tokenizer.Close()
}

// WordCounter approximates tokens from the word count (1 token ~ 0.75 words).
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return int(float64(len(strings.Fields(text))) / 0.75)
}
