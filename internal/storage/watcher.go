// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// STORE WATCHER
// =============================================================================

// selfWriteWindow is how long after our own write we ignore change
// events for the store file.
const selfWriteWindow = 2 * time.Second

// StoreWatcher watches the history database file and fires a callback
// when another process writes it. The store has no cross-process
// locking; the last writer wins, and the watcher lets a running
// instance pick up external changes instead of overwriting them
// blindly.
type StoreWatcher struct {
	store    *SessionStore
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	pending time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewStoreWatcher creates a watcher over the store's database file.
// onChange runs on the watcher goroutine after external writes settle.
func NewStoreWatcher(store *SessionStore, logger *zap.Logger, onChange func()) (*StoreWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &StoreWatcher{
		store:    store,
		watcher:  watcher,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for external writes.
func (w *StoreWatcher) Watch() error {
	// Watch the directory, not the file: SQLite WAL checkpoints and
	// atomic renames replace the inode under a direct file watch.
	dir := filepath.Dir(w.store.kv.Path())
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()
	return nil
}

// processEvents filters filesystem events down to writes against the
// store file.
func (w *StoreWatcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("store watcher panic", zap.Any("panic", r))
		}
	}()

	base := filepath.Base(w.store.kv.Path())
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base && filepath.Base(event.Name) != base+"-wal" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if w.store.WroteWithin(selfWriteWindow) {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("store watcher error", zap.Error(err))
		}
	}
}

// processPending fires the change callback once events settle.
func (w *StoreWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			fire := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if fire {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if fire {
				w.logger.Info("external change to chat history, reloading")
				if err := w.store.Reload(); err != nil {
					w.logger.Error("failed to reload chat history", zap.Error(err))
					continue
				}
				if w.onChange != nil {
					w.onChange()
				}
			}
		}
	}
}

// Close stops watching and releases resources.
func (w *StoreWatcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
