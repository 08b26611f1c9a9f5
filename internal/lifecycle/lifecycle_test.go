// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package lifecycle

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
	"github.com/fuzzbin/fuzzbin/internal/store"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *store.Store) {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return New(s), s
}

func TestFire_WalksHappyPath(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCoordinator(t)

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Song", Artist: "Artist"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	steps := []struct {
		event Event
		want  store.Status
	}{
		{EventQueue, store.StatusQueued},
		{EventStartDownload, store.StatusDownloading},
		{EventDownloadOK, store.StatusDownloaded},
		{EventImport, store.StatusImported},
		{EventOrganize, store.StatusOrganized},
		{EventArchive, store.StatusArchived},
	}
	for _, step := range steps {
		if err := c.Fire(ctx, v.ID, step.event, Facts{}); err != nil {
			t.Fatalf("Fire(%s): %v", step.event, err)
		}
		got, err := s.GetVideo(ctx, v.ID, false)
		if err != nil {
			t.Fatalf("GetVideo: %v", err)
		}
		if got.Status != step.want {
			t.Fatalf("after %s: status = %q, want %q", step.event, got.Status, step.want)
		}
	}
}

func TestFire_RefusesOutOfTableTransition(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCoordinator(t)

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Song", Artist: "Artist"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	// Video is "discovered"; organize is only valid from "imported".
	err = c.Fire(ctx, v.ID, EventOrganize, Facts{})
	if ferrors.CodeOf(err) != "InvalidQuery" {
		t.Fatalf("expected InvalidQuery for out-of-table transition, got %v", err)
	}

	got, err := s.GetVideo(ctx, v.ID, false)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if got.Status != store.StatusDiscovered {
		t.Fatalf("expected status unchanged after a refused transition, got %q", got.Status)
	}
}

func TestFire_MarkMissingFromAnyState(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCoordinator(t)

	for _, start := range []store.Status{store.StatusDiscovered, store.StatusArchived} {
		v, err := s.CreateVideo(ctx, &store.Video{Title: "Song", Artist: "Artist", Status: start})
		if err != nil {
			t.Fatalf("CreateVideo: %v", err)
		}
		if err := c.Fire(ctx, v.ID, EventMarkMissing, Facts{ExpectedPath: "/library/song.mp4"}); err != nil {
			t.Fatalf("Fire(mark_missing) from %s: %v", start, err)
		}
		got, err := s.GetVideo(ctx, v.ID, false)
		if err != nil {
			t.Fatalf("GetVideo: %v", err)
		}
		if got.Status != store.StatusMissing {
			t.Fatalf("expected status missing from %s, got %q", start, got.Status)
		}
	}
}

func TestFire_DownloadOKSetsFileVerifiedAt(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCoordinator(t)

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Song", Artist: "Artist"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if err := c.Fire(ctx, v.ID, EventQueue, Facts{}); err != nil {
		t.Fatalf("Fire(queue): %v", err)
	}
	if err := c.Fire(ctx, v.ID, EventStartDownload, Facts{}); err != nil {
		t.Fatalf("Fire(start_download): %v", err)
	}
	if err := c.Fire(ctx, v.ID, EventDownloadOK, Facts{VideoFilePath: "/downloads/song.mp4"}); err != nil {
		t.Fatalf("Fire(download_ok): %v", err)
	}

	got, err := s.GetVideo(ctx, v.ID, false)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if got.FileVerifiedAt == nil {
		t.Fatalf("expected download_ok to set file_verified_at")
	}
}

func TestFire_ImportOnlyUpdatesSuppliedFields(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCoordinator(t)

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Song", Artist: "Artist", Genre: "Rock"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	for _, ev := range []Event{EventQueue, EventStartDownload, EventDownloadOK} {
		if err := c.Fire(ctx, v.ID, ev, Facts{}); err != nil {
			t.Fatalf("Fire(%s): %v", ev, err)
		}
	}

	// Import supplies only Album; Genre must survive untouched rather
	// than being blanked out by the unsupplied field.
	if err := c.Fire(ctx, v.ID, EventImport, Facts{Album: "Greatest Hits"}); err != nil {
		t.Fatalf("Fire(import): %v", err)
	}

	got, err := s.GetVideo(ctx, v.ID, false)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if got.Album != "Greatest Hits" {
		t.Fatalf("expected album set from import facts, got %q", got.Album)
	}
	if got.Genre != "Rock" {
		t.Fatalf("expected genre to survive an import that didn't supply it, got %q", got.Genre)
	}
}

func TestFire_DownloadFailBumpsAttemptsAndAllowsRetry(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCoordinator(t)

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Song", Artist: "Artist"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if err := c.Fire(ctx, v.ID, EventQueue, Facts{}); err != nil {
		t.Fatalf("Fire(queue): %v", err)
	}
	if err := c.Fire(ctx, v.ID, EventStartDownload, Facts{}); err != nil {
		t.Fatalf("Fire(start_download): %v", err)
	}
	if err := c.Fire(ctx, v.ID, EventDownloadFail, Facts{LastDownloadError: "timeout"}); err != nil {
		t.Fatalf("Fire(download_fail): %v", err)
	}

	got, err := s.GetVideo(ctx, v.ID, false)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if got.Status != store.StatusFailed {
		t.Fatalf("expected status failed, got %q", got.Status)
	}
	if got.DownloadAttempts != 1 {
		t.Fatalf("expected download_attempts=1, got %d", got.DownloadAttempts)
	}

	if err := c.Fire(ctx, v.ID, EventRetry, Facts{}); err != nil {
		t.Fatalf("Fire(retry): %v", err)
	}
	got, err = s.GetVideo(ctx, v.ID, false)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if got.Status != store.StatusQueued {
		t.Fatalf("expected status queued after retry, got %q", got.Status)
	}
}
