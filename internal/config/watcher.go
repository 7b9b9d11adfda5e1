// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the configuration when ~/.sera/config.toml changes.
// Editors write config files with rename-and-replace, so the watcher
// observes the parent directory and debounces bursts of events.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onReload func(*Config)

	mu      sync.Mutex
	pending bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for the config file at path. onReload is
// called with the freshly loaded configuration after each change; load
// errors are logged and the previous configuration is kept.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fw,
		path:     path,
		debounce: 500 * time.Millisecond,
		onReload: onReload,
		ctx:      ctx,
		cancel:   cancel,
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		cancel()
		return nil, err
	}

	w.wg.Add(1)
	go w.processEvents()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config watcher error: %v", err)
		}
	}
}

// scheduleReload coalesces rapid successive events into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	if w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = true
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-w.ctx.Done():
			return
		case <-time.After(w.debounce):
		}

		w.mu.Lock()
		w.pending = false
		w.mu.Unlock()

		cfg, err := LoadFrom(w.path)
		if err != nil {
			log.Printf("config reload failed: %v", err)
			return
		}
		SetGlobal(cfg)
		if w.onReload != nil {
			w.onReload(cfg)
		}
	}()
}
