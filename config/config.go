package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Generation GenerationConfig `yaml:"generation"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Quality    QualityConfig    `yaml:"quality"`
	Logging    LoggingConfig    `yaml:"logging"`
	History    HistoryConfig    `yaml:"history"`
	Watch      WatchConfig      `yaml:"watch"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ModelEntry describes one generation model. Endpoint is the
// text-generation-inference base URL for the "tgi" provider; Model is the
// model identifier passed to the Gemini API for the "gemini" provider.
type ModelEntry struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type GenerationConfig struct {
	Provider         string       `yaml:"provider"`
	APIKey           string       `yaml:"api_key"`
	ParaphraseModels []ModelEntry `yaml:"paraphrase_models"`
	ExpansionModels  []ModelEntry `yaml:"expansion_models"`
	TimeoutSeconds   int          `yaml:"timeout_seconds"`
	MaxRetries       int          `yaml:"max_retries"`
}

type ChunkingConfig struct {
	MaxTokens     int    `yaml:"max_tokens"`
	Method        string `yaml:"method"`
	Encoding      string `yaml:"encoding"`
	TokenizerFile string `yaml:"tokenizer_file"`
	Concurrency   int    `yaml:"concurrency"`
}

type QualityConfig struct {
	LanguageToolURL  string `yaml:"languagetool_url"`
	LanguageToolLang string `yaml:"languagetool_lang"`
	EmbeddingURL     string `yaml:"embedding_url"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	CSVPath string `yaml:"csv_path"`
}

type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
}

type WatchConfig struct {
	InputDir      string `yaml:"input_dir"`
	OutputDir     string `yaml:"output_dir"`
	ArchiveDir    string `yaml:"archive_dir"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Generation.Provider == "" {
		c.Generation.Provider = "tgi"
	}
	if c.Generation.Provider != "tgi" && c.Generation.Provider != "gemini" {
		return fmt.Errorf("generation.provider must be tgi or gemini, got %q", c.Generation.Provider)
	}
	if len(c.Generation.ParaphraseModels) == 0 {
		return fmt.Errorf("generation.paraphrase_models is required")
	}
	if len(c.Generation.ExpansionModels) == 0 {
		return fmt.Errorf("generation.expansion_models is required")
	}
	models := make([]ModelEntry, 0, len(c.Generation.ParaphraseModels)+len(c.Generation.ExpansionModels))
	models = append(models, c.Generation.ParaphraseModels...)
	models = append(models, c.Generation.ExpansionModels...)
	for _, m := range models {
		if m.Name == "" {
			return fmt.Errorf("every model entry needs a name")
		}
		if c.Generation.Provider == "tgi" && m.Endpoint == "" {
			return fmt.Errorf("model %s: endpoint is required for the tgi provider", m.Name)
		}
		if c.Generation.Provider == "gemini" && m.Model == "" {
			return fmt.Errorf("model %s: model is required for the gemini provider", m.Name)
		}
	}

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 7860
	}
	if c.Generation.TimeoutSeconds == 0 {
		c.Generation.TimeoutSeconds = 120
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("generation.max_retries must be >= 0")
	}
	if c.Chunking.MaxTokens < 0 {
		return fmt.Errorf("chunking.max_tokens must be positive")
	}
	if c.Chunking.MaxTokens == 0 {
		c.Chunking.MaxTokens = 384
	}
	if c.Chunking.Method == "" {
		c.Chunking.Method = "sen"
	}
	if c.Chunking.Method != "sen" && c.Chunking.Method != "md" && c.Chunking.Method != "rec" {
		return fmt.Errorf("chunking.method must be sen, md, or rec, got %q", c.Chunking.Method)
	}
	if c.Chunking.Encoding == "" {
		c.Chunking.Encoding = "cl100k_base"
	}
	if c.Chunking.Concurrency <= 0 {
		c.Chunking.Concurrency = 1
	}
	if c.Quality.LanguageToolLang == "" {
		c.Quality.LanguageToolLang = "en-US"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.CSVPath == "" {
		c.Logging.CSVPath = "logs/paraphraser_results.csv"
	}
	if c.History.DBPath == "" {
		c.History.DBPath = "data/history.db"
	}
	if c.Watch.InputDir == "" {
		c.Watch.InputDir = "data/input"
	}
	if c.Watch.OutputDir == "" {
		c.Watch.OutputDir = "data/output"
	}
	if c.Watch.ArchiveDir == "" {
		c.Watch.ArchiveDir = "data/archived"
	}
	if c.Watch.MaxConcurrent <= 0 {
		c.Watch.MaxConcurrent = 2
	}

	return nil
}
