// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "testing"

func TestHistory_UndoRedo(t *testing.T) {
	base := Defaults()
	h := NewHistory(base)

	first := base
	first.Logging.Level = "debug"
	h.Push(first, ChangeSummary{ChangedFields: []string{"Logging.Level"}})

	second := first
	second.Logging.Level = "warn"
	h.Push(second, ChangeSummary{ChangedFields: []string{"Logging.Level"}})

	if got := h.Current().Logging.Level; got != "warn" {
		t.Fatalf("current level = %q, want warn", got)
	}

	undone, ok := h.Undo()
	if !ok || undone.Logging.Level != "debug" {
		t.Fatalf("undo: got %v, ok=%v", undone.Logging.Level, ok)
	}

	undone, ok = h.Undo()
	if !ok || undone.Logging.Level != base.Logging.Level {
		t.Fatalf("second undo: got %v, ok=%v", undone.Logging.Level, ok)
	}

	if _, ok := h.Undo(); ok {
		t.Fatalf("expected undo to fail at the oldest entry")
	}

	redone, ok := h.Redo()
	if !ok || redone.Logging.Level != "debug" {
		t.Fatalf("redo: got %v, ok=%v", redone.Logging.Level, ok)
	}
}

func TestHistory_PushDiscardsRedoTail(t *testing.T) {
	base := Defaults()
	h := NewHistory(base)

	a := base
	a.Logging.Level = "debug"
	h.Push(a, ChangeSummary{})

	if _, ok := h.Undo(); !ok {
		t.Fatalf("expected undo to succeed")
	}

	b := base
	b.Logging.Level = "error"
	h.Push(b, ChangeSummary{})

	if _, ok := h.Redo(); ok {
		t.Fatalf("expected redo tail to be discarded after a new push")
	}
}
