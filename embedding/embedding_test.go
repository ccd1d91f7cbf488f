package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"Identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"Orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"Opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"LengthMismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"ZeroVector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestTEIClientGetEmbeddings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req EmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		out := make(EmbeddingResponse, len(req.Inputs))
		for i := range req.Inputs {
			out[i] = []float32{float32(i), 1}
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	client := NewTEIClient(srv.URL)
	vecs, err := client.GetEmbeddings(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	if vecs[1][0] != 1 {
		t.Errorf("unexpected vector content: %v", vecs[1])
	}
}

func TestTEIClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewTEIClient(srv.URL)
	if _, err := client.GetEmbeddings(context.Background(), []string{"x"}); err == nil {
		t.Errorf("expected error for 500 response")
	}
}
