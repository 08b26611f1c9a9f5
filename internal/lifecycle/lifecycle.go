// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package lifecycle is the single in-process coordinator (component G)
// that enforces the video status state table. It refuses and logs any
// out-of-table transition rather than applying it, and emits history
// exactly once per actual change by delegating the write itself to
// the store.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
	"github.com/fuzzbin/fuzzbin/internal/log"
	"github.com/fuzzbin/fuzzbin/internal/pipeline/fsm"
	"github.com/fuzzbin/fuzzbin/internal/store"
)

// Event names the fact a caller is reporting, distinct from the
// target status so a transition's preconditions can be phrased in
// terms of what happened rather than just where it's going.
type Event string

const (
	EventQueue         Event = "queue"
	EventStartDownload Event = "start_download"
	EventDownloadOK    Event = "download_ok"
	EventDownloadFail  Event = "download_fail"
	EventImport        Event = "import"
	EventOrganize      Event = "organize"
	EventArchive       Event = "archive"
	EventMarkMissing   Event = "mark_missing"
	EventRetry         Event = "retry"
)

// transition is one row of the §4.G state table: From is the set of
// statuses the event is valid from, To is the resulting status.
type transition struct {
	from []store.Status
	to   store.Status
}

var table = map[Event]transition{
	EventQueue:         {from: []store.Status{store.StatusDiscovered, store.StatusFailed}, to: store.StatusQueued},
	EventStartDownload: {from: []store.Status{store.StatusQueued}, to: store.StatusDownloading},
	EventDownloadOK:    {from: []store.Status{store.StatusDownloading}, to: store.StatusDownloaded},
	EventDownloadFail:  {from: []store.Status{store.StatusDownloading}, to: store.StatusFailed},
	EventImport:        {from: []store.Status{store.StatusDownloaded}, to: store.StatusImported},
	EventOrganize:      {from: []store.Status{store.StatusImported}, to: store.StatusOrganized},
	EventArchive:       {from: []store.Status{store.StatusOrganized}, to: store.StatusArchived},
	EventRetry:         {from: []store.Status{store.StatusFailed}, to: store.StatusQueued},
}

// missingFrom lists every status a "mark_missing" event may fire from
// (§4.G: "Any state → missing on post-hoc file loss"), including the
// terminal archived status, which the spec does not exclude.
var missingFrom = []store.Status{
	store.StatusDiscovered, store.StatusQueued, store.StatusDownloading, store.StatusDownloaded,
	store.StatusFailed, store.StatusImported, store.StatusOrganized, store.StatusArchived,
}

// rows expands table and missingFrom into the per-(from,event) edges
// the machine is built from.
func rows() []fsm.Transition[store.Status, Event] {
	var out []fsm.Transition[store.Status, Event]
	for event, t := range table {
		for _, from := range t.from {
			out = append(out, fsm.Transition[store.Status, Event]{From: from, Event: event, To: t.to})
		}
	}
	for _, from := range missingFrom {
		out = append(out, fsm.Transition[store.Status, Event]{From: from, Event: EventMarkMissing, To: store.StatusMissing})
	}
	return out
}

// Facts carries whatever the caller already knows about the
// transition being reported; only the fields relevant to Event are
// read. Fire never inspects state the caller doesn't supply.
type Facts struct {
	Reason            string
	ChangedBy         string
	MetadataJSON      string
	VideoFilePath     string
	FileSize          *int64
	FileChecksum      string
	Album, Genre, Studio, Director string
	FinalVideoPath    string
	FinalNFOPath      string
	LastDownloadError string
	ExpectedPath      string
}

// Coordinator enforces the transition table over a single store.
type Coordinator struct {
	store *store.Store
}

func New(s *store.Store) *Coordinator {
	return &Coordinator{store: s}
}

// Fire validates and applies event against videoID's current status,
// emitting exactly one history row through the store when a change
// actually occurs. An out-of-table transition is refused and logged,
// never silently applied.
func (c *Coordinator) Fire(ctx context.Context, videoID int64, event Event, facts Facts) error {
	logger := log.WithComponent("lifecycle")

	v, err := c.store.GetVideo(ctx, videoID, false)
	if err != nil {
		return err
	}

	machine, err := fsm.New(v.Status, rows())
	if err != nil {
		return fmt.Errorf("lifecycle: build machine: %w", err)
	}
	to, err := machine.Fire(ctx, event)
	if err != nil {
		logger.Warn().Int64("video_id", videoID).Str("event", string(event)).Str("from", string(v.Status)).Msg("refusing out-of-table transition")
		return ferrors.InvalidQuery("video %d: event %q invalid from status %s", videoID, event, v.Status)
	}

	if event == EventMarkMissing {
		return c.applyMissing(ctx, videoID, facts)
	}
	return c.applySideEffects(ctx, videoID, event, to, facts)
}

func (c *Coordinator) applySideEffects(ctx context.Context, videoID int64, event Event, to store.Status, f Facts) error {
	u := store.VideoUpdate{Status: &to, StatusMessage: &f.Reason}

	switch event {
	case EventDownloadOK:
		verifiedAt := time.Now().UTC()
		u.VideoFilePath = &f.VideoFilePath
		u.FileSize = f.FileSize
		u.FileChecksum = &f.FileChecksum
		u.FileVerifiedAt = &verifiedAt
	case EventDownloadFail:
		u.LastDownloadError = &f.LastDownloadError
	case EventImport:
		// Each field is guarded individually: UpdateVideo's addStr maps
		// "" to NULL, so an import that only supplies some of these
		// (e.g. genre but not studio) must not blank out the rest.
		if f.Album != "" {
			u.Album = &f.Album
		}
		if f.Genre != "" {
			u.Genre = &f.Genre
		}
		if f.Studio != "" {
			u.Studio = &f.Studio
		}
		if f.Director != "" {
			u.Director = &f.Director
		}
	case EventOrganize:
		u.VideoFilePath = &f.FinalVideoPath
		u.NFOFilePath = &f.FinalNFOPath
	}

	if err := c.store.UpdateVideo(ctx, videoID, u); err != nil {
		return err
	}
	if event == EventDownloadFail {
		if err := c.bumpDownloadAttempts(ctx, videoID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) bumpDownloadAttempts(ctx context.Context, videoID int64) error {
	v, err := c.store.GetVideo(ctx, videoID, false)
	if err != nil {
		return err
	}
	n := v.DownloadAttempts + 1
	return c.store.UpdateVideo(ctx, videoID, store.VideoUpdate{DownloadAttempts: &n})
}

func (c *Coordinator) applyMissing(ctx context.Context, videoID int64, f Facts) error {
	to := store.StatusMissing
	reason := fmt.Sprintf("expected_path=%s", f.ExpectedPath)
	if f.Reason != "" {
		reason = f.Reason
	}
	return c.store.UpdateVideo(ctx, videoID, store.VideoUpdate{Status: &to, StatusMessage: &reason})
}
