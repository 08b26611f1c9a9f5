// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "sync"

// defaultHistoryCapacity bounds the undo/redo ring buffer.
const defaultHistoryCapacity = 50

// changeRecord pairs a snapshot with the diff that produced it.
type changeRecord struct {
	snapshot AppConfig
	summary  ChangeSummary
}

// History is a bounded undo/redo ring buffer of applied configs. A
// cycling field (one that oscillates between two values) is handled
// naturally: each apply just pushes another entry, so undo/redo walks
// the actual sequence of changes rather than deduplicating values.
type History struct {
	mu       sync.Mutex
	cap      int
	entries  []changeRecord
	cursor   int // index of the currently-active entry in entries
}

// NewHistory seeds the history with initial as entry zero.
func NewHistory(initial AppConfig) *History {
	return &History{
		cap:     defaultHistoryCapacity,
		entries: []changeRecord{{snapshot: initial}},
		cursor:  0,
	}
}

// Push records next as the new current entry, discarding any redo tail
// and evicting the oldest entry once the buffer is full.
func (h *History) Push(next AppConfig, summary ChangeSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, changeRecord{snapshot: next, summary: summary})
	if len(h.entries) > h.cap {
		h.entries = h.entries[len(h.entries)-h.cap:]
	}
	h.cursor = len(h.entries) - 1
}

// Undo moves the cursor back one entry and returns its snapshot. ok is
// false if already at the oldest entry.
func (h *History) Undo() (AppConfig, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return AppConfig{}, false
	}
	h.cursor--
	return h.entries[h.cursor].snapshot, true
}

// Redo moves the cursor forward one entry and returns its snapshot. ok
// is false if already at the newest entry.
func (h *History) Redo() (AppConfig, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= len(h.entries)-1 {
		return AppConfig{}, false
	}
	h.cursor++
	return h.entries[h.cursor].snapshot, true
}

// Current returns the snapshot at the cursor.
func (h *History) Current() AppConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor].snapshot
}
