package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTGIClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/generate", r.URL.Path)

		var req tgiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "paraphrase: hello </s>", req.Inputs)
		assert.Equal(t, 200, req.Parameters.MaxNewTokens)

		json.NewEncoder(w).Encode(tgiResponse{GeneratedText: "hi there"})
	}))
	defer srv.Close()

	client := NewTGIClient("test-model", srv.URL, 5*time.Second, 0)
	defer client.Close()

	out, err := client.Generate(context.Background(), Request{
		Text:         "paraphrase: hello </s>",
		MaxNewTokens: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
}

func TestTGIClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewTGIClient("test-model", srv.URL, 5*time.Second, 0)
	defer client.Close()

	_, err := client.Generate(context.Background(), Request{Text: "x"})
	require.Error(t, err)

	var modelErr *ModelError
	require.True(t, errors.As(err, &modelErr))
	assert.Equal(t, "test-model", modelErr.Model)
}

func TestTGIClientRetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(tgiResponse{GeneratedText: "ok"})
	}))
	defer srv.Close()

	client := NewTGIClient("test-model", srv.URL, 5*time.Second, 4)
	defer client.Close()

	out, err := client.Generate(context.Background(), Request{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCacheBuildsOnceAndCloses(t *testing.T) {
	var built, closed int32
	cache := NewCache(func(spec ModelSpec) (Generator, error) {
		atomic.AddInt32(&built, 1)
		return &fakeGenerator{onClose: func() { atomic.AddInt32(&closed, 1) }}, nil
	}, zap.NewNop())

	spec := ModelSpec{Name: "m1", Endpoint: "http://x"}
	g1, err := cache.Get(spec)
	require.NoError(t, err)
	g2, err := cache.Get(spec)
	require.NoError(t, err)
	assert.Same(t, g1, g2)
	assert.Equal(t, int32(1), built)
	assert.Equal(t, []string{"m1"}, cache.Cached())

	require.NoError(t, cache.Close())
	assert.Equal(t, int32(1), closed)
	assert.Empty(t, cache.Cached())
}

func TestCacheBuildError(t *testing.T) {
	cache := NewCache(func(ModelSpec) (Generator, error) {
		return nil, errors.New("no such model")
	}, zap.NewNop())

	_, err := cache.Get(ModelSpec{Name: "missing"})
	assert.Error(t, err)
	assert.Empty(t, cache.Cached())
}

type fakeGenerator struct {
	onClose func()
}

func (f *fakeGenerator) Generate(context.Context, Request) (string, error) { return "", nil }

func (f *fakeGenerator) Close() error {
	if f.onClose != nil {
		f.onClose()
	}
	return nil
}
