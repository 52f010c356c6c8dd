// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package kinship

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounceWindow batches rapid write events into one reload.
const defaultDebounceWindow = 250 * time.Millisecond

// DatasetWatcher reloads the service graph when the dataset file changes.
//
// # Description
//
// Watches the dataset file's parent directory, since editors and atomic
// writers replace the file by rename rather than writing in place.
// Events for the dataset path are debounced so a burst of writes
// triggers a single reload.
//
// # Thread Safety
//
// Safe for concurrent use. Reloads happen from a single goroutine; the
// service's atomic graph swap keeps readers consistent.
type DatasetWatcher struct {
	svc      *Service
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
	reloads  int
}

// NewDatasetWatcher creates a watcher for the given dataset path.
//
// # Inputs
//
//   - svc: Service whose graph gets replaced on reload.
//   - path: Dataset file to watch.
//
// # Outputs
//
//   - *DatasetWatcher: Ready-to-use watcher (call Start to begin).
//   - error: Non-nil if the underlying watcher could not be created.
func NewDatasetWatcher(svc *Service, path string) (*DatasetWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &DatasetWatcher{
		svc:      svc,
		path:     filepath.Clean(path),
		watcher:  watcher,
		debounce: defaultDebounceWindow,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching for dataset changes.
//
// Spawns the event loop goroutine, which exits when Stop is called or
// the context is canceled.
func (w *DatasetWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil // Already watching
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher.
func (w *DatasetWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true if the watcher is currently active.
func (w *DatasetWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// Reloads returns how many reloads have completed successfully.
func (w *DatasetWatcher) Reloads() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reloads
}

func (w *DatasetWatcher) run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			// Restart the debounce window on every relevant event.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Dataset watcher error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

// relevant reports whether an event concerns the dataset file itself.
func (w *DatasetWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *DatasetWatcher) reload() {
	start := time.Now()
	if err := w.svc.LoadDataset(w.path); err != nil {
		// Keep serving the previous graph.
		slog.Error("Dataset reload failed", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	stats := w.svc.Stats()
	slog.Info("Dataset reloaded",
		"path", w.path,
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"duration_ms", time.Since(start).Milliseconds())
}
