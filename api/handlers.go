package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"rephrase/chunk"
	"rephrase/generate"
	"rephrase/pipeline"
)

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := s.processor.Process(r.Context(), req)
	if err != nil {
		s.logger.Error("processing failed", zap.Error(err))
		writeProcessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeProcessError maps pipeline failures to status codes: bad input is the
// caller's fault, an upstream model failure is a bad gateway.
func writeProcessError(w http.ResponseWriter, err error) {
	var segErr *chunk.SegmentationError
	var genErr *chunk.GenerationFailure
	switch {
	case errors.As(err, &segErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &genErr):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case strings.Contains(err.Error(), "empty"), strings.Contains(err.Error(), "unknown mode"):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type qualityRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req qualityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	metrics := s.scorer.Score(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, metrics)
}

type modelsResponse struct {
	Mode   string   `json:"mode"`
	Models []string `json:"models"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mode := generate.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = generate.ModeParaphrase
	}
	if mode != generate.ModeParaphrase && mode != generate.ModeExpand {
		http.Error(w, "mode must be Paraphrase or Expand", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, modelsResponse{
		Mode:   string(mode),
		Models: s.processor.Models(mode),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := s.processor.History()
	if store == nil {
		http.Error(w, "history is disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := store.Recent(limit)
	if err != nil {
		s.logger.Error("failed to list history", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHistoryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := s.processor.History()
	if store == nil {
		http.Error(w, "history is disabled", http.StatusNotFound)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if id == "" {
		http.Error(w, "record id is required", http.StatusBadRequest)
		return
	}

	record, found, err := store.Get(id)
	if err != nil {
		s.logger.Error("failed to load history record", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
