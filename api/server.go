// Package api exposes the processing pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rephrase/generate"
	"rephrase/history"
	"rephrase/pipeline"
	"rephrase/quality"
)

// Processor is the pipeline surface the handlers need.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Models(mode generate.Mode) []string
	History() *history.Store
}

// Server serves the processing API.
type Server struct {
	processor Processor
	scorer    *quality.Scorer
	logger    *zap.Logger
	httpSrv   *http.Server
}

func NewServer(addr string, processor Processor, scorer *quality.Scorer, logger *zap.Logger) *Server {
	s := &Server{
		processor: processor,
		scorer:    scorer,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/process", s.handleProcess)
	mux.HandleFunc("/api/quality", s.handleQuality)
	mux.HandleFunc("/api/models", s.handleModels)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistoryByID)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
