package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rephrase/api"
	"rephrase/chunk"
	"rephrase/config"
	"rephrase/csvlog"
	"rephrase/embedding"
	"rephrase/file"
	"rephrase/generate"
	"rephrase/history"
	"rephrase/pipeline"
	"rephrase/quality"
	"rephrase/watch"
)

var (
	configPath string
	mode       string
	model      string
	markdown   bool
)

func main() {
	root := &cobra.Command{
		Use:   "rephrase",
		Short: "Paraphrase and expand long-form text through fixed-context generation models",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  runServe,
	}

	processCmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Process one document and print the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runProcess,
	}
	processCmd.Flags().StringVar(&mode, "mode", "Paraphrase", "Paraphrase or Expand")
	processCmd.Flags().StringVar(&model, "model", "", "model name, default model when empty")
	processCmd.Flags().BoolVar(&markdown, "markdown", false, "preserve markdown structure")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the input directory and process dropped documents",
		RunE:  runWatch,
	}
	watchCmd.Flags().StringVar(&mode, "mode", "Paraphrase", "Paraphrase or Expand")

	root.AddCommand(serveCmd, processCmd, watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the assembled components and what must be released on exit.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	scorer   *quality.Scorer
	closers  []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("cleanup failed", zap.Error(err))
		}
	}
	a.logger.Sync()
}

func buildApp(ctx context.Context) (*app, error) {
	// =========
	// Config
	// =========
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// =========
	// Logging
	// =========
	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	// =========
	// Token counting
	// =========
	var counter chunk.TokenCounter
	if cfg.Chunking.TokenizerFile != "" {
		hf, err := chunk.NewHFTokenizerCounter(cfg.Chunking.TokenizerFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, hf.Close)
		counter = hf
	} else {
		tk, err := chunk.NewTiktokenCounter(cfg.Chunking.Encoding)
		if err != nil {
			return nil, err
		}
		counter = tk
	}

	// =========
	// Splitting
	// =========
	var splitter chunk.Splitter
	switch cfg.Chunking.Method {
	case "md":
		splitter, err = chunk.NewMarkdownSplitter(cfg.Chunking.MaxTokens, counter)
	case "rec":
		splitter, err = chunk.NewRecursiveSplitter(cfg.Chunking.MaxTokens, counter)
	default:
		splitter, err = chunk.NewSentenceSplitter(cfg.Chunking.MaxTokens, counter)
	}
	if err != nil {
		return nil, err
	}
	processor := chunk.NewProcessor(splitter, counter, cfg.Chunking.MaxTokens, cfg.Chunking.Concurrency, logger)

	// =========
	// Generation
	// =========
	catalog, err := generate.NewCatalog(
		toSpecs(cfg.Generation.ParaphraseModels),
		toSpecs(cfg.Generation.ExpansionModels),
	)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Generation.TimeoutSeconds) * time.Second
	build := func(spec generate.ModelSpec) (generate.Generator, error) {
		if cfg.Generation.Provider == "gemini" {
			return generate.NewGeminiClient(ctx, spec.Name, spec.Model, cfg.Generation.APIKey)
		}
		return generate.NewTGIClient(spec.Name, spec.Endpoint, timeout, cfg.Generation.MaxRetries), nil
	}
	cache := generate.NewCache(build, logger)
	a.closers = append(a.closers, cache.Close)

	// =========
	// Quality
	// =========
	var grammar quality.GrammarChecker
	if cfg.Quality.LanguageToolURL != "" {
		grammar = quality.NewLanguageToolClient(cfg.Quality.LanguageToolURL, cfg.Quality.LanguageToolLang)
	}
	var embed embedding.Client
	if cfg.Quality.EmbeddingURL != "" {
		embed = embedding.NewTEIClient(cfg.Quality.EmbeddingURL)
	}
	a.scorer = quality.NewScorer(grammar, embed, logger)

	// =========
	// Bookkeeping
	// =========
	csv, err := csvlog.New(cfg.Logging.CSVPath, logger)
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	a.pipeline = pipeline.New(processor, catalog, cache, a.scorer, csv, store, logger)
	return a, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return err
	}
	defer a.close()

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	server := api.NewServer(addr, a.pipeline, a.scorer, a.logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return err
	}
	defer a.close()

	doc, err := file.ReadDocument(args[0])
	if err != nil {
		return err
	}

	result, err := a.pipeline.Process(ctx, pipeline.Request{
		Text:     doc.Content,
		Mode:     generate.Mode(mode),
		Model:    model,
		Markdown: markdown || doc.Markdown,
	})
	if err != nil {
		return err
	}

	a.logger.Info("processing finished",
		zap.String("id", result.ID),
		zap.String("model", result.Model),
		zap.Float64("similarity", result.Similarity),
		zap.Int64("elapsed_ms", result.ElapsedMS))

	fmt.Println(result.Output)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return err
	}
	defer a.close()

	for _, dir := range []string{a.cfg.Watch.InputDir, a.cfg.Watch.OutputDir, a.cfg.Watch.ArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	handler := func(ctx context.Context, path string) error {
		doc, err := file.ReadDocument(path)
		if err != nil {
			return err
		}

		result, err := a.pipeline.Process(ctx, pipeline.Request{
			Text:     doc.Content,
			Mode:     generate.Mode(mode),
			Markdown: doc.Markdown,
		})
		if err != nil {
			return err
		}

		saved, err := file.SaveResult(result.Output, doc.Name, a.cfg.Watch.OutputDir)
		if err != nil {
			return err
		}
		if err := os.Rename(path, filepath.Join(a.cfg.Watch.ArchiveDir, doc.Name)); err != nil {
			return fmt.Errorf("failed to archive %s: %w", path, err)
		}

		a.logger.Info("document processed",
			zap.String("input", path),
			zap.String("output", saved),
			zap.Float64("similarity", result.Similarity))
		return nil
	}

	w, err := watch.New(a.cfg.Watch.InputDir, handler, a.logger, a.cfg.Watch.MaxConcurrent)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func toSpecs(entries []config.ModelEntry) []generate.ModelSpec {
	specs := make([]generate.ModelSpec, len(entries))
	for i, e := range entries {
		specs[i] = generate.ModelSpec{Name: e.Name, Endpoint: e.Endpoint, Model: e.Model}
	}
	return specs
}
