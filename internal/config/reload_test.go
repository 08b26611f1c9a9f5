// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestHolder_ApplyRuntimeRefusesThenForces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewLoader(path)
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := NewHolder(initial, loader)

	next := h.Get()
	next.LibraryDir = "/new/library"

	if _, err := h.ApplyRuntime(next, false); err == nil {
		t.Fatalf("expected ApplyRuntime to refuse an affects_state change without force")
	}
	if got := h.Get().LibraryDir; got != initial.LibraryDir {
		t.Fatalf("expected refused apply to leave config unchanged, got %q", got)
	}

	summary, err := h.ApplyRuntime(next, true)
	if err != nil {
		t.Fatalf("ApplyRuntime with force: %v", err)
	}
	if len(summary.NeedsForce) != 1 || summary.NeedsForce[0] != "LibraryDir" {
		t.Fatalf("expected LibraryDir in NeedsForce, got %v", summary.NeedsForce)
	}
	if got := h.Get().LibraryDir; got != "/new/library" {
		t.Fatalf("expected applied config to take effect, got %q", got)
	}
}

func TestHolder_UndoRedoAffectsLiveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewLoader(path)
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := NewHolder(initial, loader)

	next := h.Get()
	next.Logging.Level = "debug"
	if _, err := h.ApplyRuntime(next, false); err != nil {
		t.Fatalf("ApplyRuntime: %v", err)
	}
	if got := h.Get().Logging.Level; got != "debug" {
		t.Fatalf("expected level debug after apply, got %q", got)
	}

	if _, ok := h.Undo(); !ok {
		t.Fatalf("expected undo to succeed")
	}
	if got := h.Get().Logging.Level; got != initial.Logging.Level {
		t.Fatalf("expected undo to restore original level, got %q", got)
	}

	if _, ok := h.Redo(); !ok {
		t.Fatalf("expected redo to succeed")
	}
	if got := h.Get().Logging.Level; got != "debug" {
		t.Fatalf("expected redo to reapply debug level, got %q", got)
	}
}

func TestHolder_Reload_PicksUpFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewLoader(path)
	mgr := NewManager(path, loader)

	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := NewHolder(initial, loader)

	onDisk := initial
	onDisk.Logging.Level = "error"
	onDisk.LibraryDir = "/reloaded/library"
	if err := mgr.Save(onDisk); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := h.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	got := h.Get()
	if got.Logging.Level != "error" || got.LibraryDir != "/reloaded/library" {
		t.Fatalf("expected reload to pick up file changes (file-edit implies explicit intent), got %+v", got)
	}
}

func TestHolder_WatcherStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewLoader(path)
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := NewHolder(initial, loader)

	ctx, cancel := context.WithCancel(context.Background())
	if err := h.StartWatcher(ctx, path); err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	cancel()
	h.Stop()
	time.Sleep(50 * time.Millisecond)
}
