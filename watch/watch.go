// Package watch monitors a drop directory and hands newly created documents
// to a processing handler, with a bounded number of files in flight.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler processes one newly dropped file.
type Handler func(ctx context.Context, path string) error

// settleDelay gives the writing process time to finish before the file is
// read.
const settleDelay = 500 * time.Millisecond

var watchedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
}

// Watcher monitors one input directory.
type Watcher struct {
	inputDir  string
	handler   Handler
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// New creates a watcher on inputDir. maxConcurrent bounds how many files may
// be processed at once and defaults to 2.
func New(inputDir string, handler Handler, logger *zap.Logger, maxConcurrent int) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fw.Add(inputDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", inputDir, err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &Watcher{
		inputDir:  inputDir,
		handler:   handler,
		logger:    logger,
		watcher:   fw,
		semaphore: make(chan struct{}, maxConcurrent),
	}, nil
}

// Run blocks until ctx is cancelled, dispatching each created document file
// to the handler. On cancellation it waits for in-flight work to finish.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching for documents",
		zap.String("dir", w.inputDir),
		zap.Int("max_concurrent", cap(w.semaphore)))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("waiting for in-flight files")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isDocument(event.Name) {
				w.logger.Debug("ignoring non-document file", zap.String("path", event.Name))
				continue
			}

			w.logger.Info("new document detected", zap.String("path", event.Name))
			time.Sleep(settleDelay)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, path); err != nil {
						w.logger.Error("failed to process file",
							zap.String("path", path),
							zap.Error(err))
					}
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func isDocument(path string) bool {
	return watchedExtensions[strings.ToLower(filepath.Ext(path))]
}
