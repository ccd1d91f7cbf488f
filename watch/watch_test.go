package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsDocument(t *testing.T) {
	assert.True(t, isDocument("/in/notes.md"))
	assert.True(t, isDocument("/in/NOTES.MD"))
	assert.True(t, isDocument("/in/page.html"))
	assert.False(t, isDocument("/in/video.mp4"))
	assert.False(t, isDocument("/in/noext"))
}

func TestRunDispatchesCreatedDocuments(t *testing.T) {
	dir := t.TempDir()

	handled := make(chan string, 4)
	w, err := New(dir, func(_ context.Context, path string) error {
		handled <- path
		return nil
	}, zap.NewNop(), 2)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	mdPath := filepath.Join(dir, "draft.md")
	require.NoError(t, os.WriteFile(mdPath, []byte("# hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.bin"), []byte{0x0}, 0644))

	select {
	case got := <-handled:
		assert.Equal(t, mdPath, got)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not invoked")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	// The non-document file must never reach the handler.
	select {
	case got := <-handled:
		t.Fatalf("unexpected dispatch for %s", got)
	default:
	}
}

func TestRunWaitsForInFlightWork(t *testing.T) {
	dir := t.TempDir()

	finished := make(chan struct{})
	w, err := New(dir, func(_ context.Context, _ string) error {
		time.Sleep(200 * time.Millisecond)
		close(finished)
		return nil
	}, zap.NewNop(), 1)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "slow.txt"), []byte("x"), 0644))

	// Give the event time to dispatch, then cancel while the handler runs.
	time.Sleep(settleDelay + 100*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("handler did not complete before shutdown")
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), nil, zap.NewNop(), 1)
	assert.Error(t, err)
}
