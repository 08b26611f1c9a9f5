// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fuzzbin/fuzzbin/internal/log"
)

// Holder holds the live AppConfig with atomic, thread-safe access and
// supports hot reload from a file watcher or a manual trigger.
type Holder struct {
	reloadOpMu sync.Mutex
	current    atomic.Pointer[AppConfig]
	loader     *Loader
	history    *History
	watcher    *fsnotify.Watcher
	configPath string
	configDir  string
	configFile string

	listenersMu sync.RWMutex
	listeners   []chan<- AppConfig
}

// NewHolder builds a Holder around an already-loaded initial config.
func NewHolder(initial AppConfig, loader *Loader) *Holder {
	h := &Holder{loader: loader, history: NewHistory(initial)}
	h.current.Store(&initial)
	return h
}

// Get returns the current configuration (thread-safe read).
func (h *Holder) Get() AppConfig {
	return *h.current.Load()
}

// Reload re-reads the config file and applies it if valid, refusing
// affects_state changes unless the file change itself is treated as
// force=true (an operator editing config.yaml directly is assumed to
// mean it).
func (h *Holder) Reload(_ context.Context) error {
	h.reloadOpMu.Lock()
	defer h.reloadOpMu.Unlock()

	logger := log.WithComponent("config")
	next, err := h.loader.Load()
	if err != nil {
		logger.Error().Err(err).Msg("config reload failed")
		return fmt.Errorf("config: reload: %w", err)
	}

	old := h.Get()
	applied, summary, err := Apply(old, next, true)
	if err != nil {
		return err
	}

	h.current.Store(&applied)
	h.history.Push(applied, summary)
	h.notify(applied)

	logger.Info().Strs("changed", summary.ChangedFields).Msg("config reloaded")
	return nil
}

// ApplyRuntime applies next over the current config without touching
// the file on disk, refusing affects_state field changes unless force
// is set.
func (h *Holder) ApplyRuntime(next AppConfig, force bool) (ChangeSummary, error) {
	h.reloadOpMu.Lock()
	defer h.reloadOpMu.Unlock()

	old := h.Get()
	applied, summary, err := Apply(old, next, force)
	if err != nil {
		return summary, err
	}
	h.current.Store(&applied)
	h.history.Push(applied, summary)
	h.notify(applied)
	return summary, nil
}

// Undo reverts to the previous history entry, if any.
func (h *Holder) Undo() (AppConfig, bool) {
	cfg, ok := h.history.Undo()
	if ok {
		h.current.Store(&cfg)
		h.notify(cfg)
	}
	return cfg, ok
}

// Redo re-applies the next history entry, if any.
func (h *Holder) Redo() (AppConfig, bool) {
	cfg, ok := h.history.Redo()
	if ok {
		h.current.Store(&cfg)
		h.notify(cfg)
	}
	return cfg, ok
}

// StartWatcher watches the config file's directory (so atomic
// replace-on-write from the Manager's own renameio writes is picked
// up too) and debounces reloads.
func (h *Holder) StartWatcher(ctx context.Context, configPath string) error {
	h.configPath = configPath
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	h.watcher = watcher
	h.configDir = filepath.Dir(configPath)
	h.configFile = filepath.Base(configPath)

	if err := watcher.Add(h.configDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("config: watch dir: %w", err)
	}

	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	logger := log.WithComponent("config")
	const debounce = 500 * time.Millisecond
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			_ = h.watcher.Close()
			return
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != h.configFile {
				continue
			}
			if !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := h.Reload(ctx); err != nil {
					logger.Error().Err(err).Msg("automatic config reload failed")
				}
			})
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			logger.Error().Err(err).Msg("config watcher error")
		}
	}
}

// Stop closes the watcher, if running.
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener registers a channel to receive the new config on
// every successful reload or runtime apply. The caller owns the
// channel's lifecycle.
func (h *Holder) RegisterListener(ch chan<- AppConfig) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg AppConfig) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()
	logger := log.WithComponent("config")
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			logger.Warn().Msg("skipped notifying config listener (channel full)")
		}
	}
}
