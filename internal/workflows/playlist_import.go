// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package workflows composes the metadata-client, store, and
// lifecycle layers into short import/enrichment orchestrations
// (component J). Each workflow is idempotent under retry and never
// lets one item's failure abort the run.
package workflows

import (
	"context"
	"strings"

	"github.com/fuzzbin/fuzzbin/internal/log"
	"github.com/fuzzbin/fuzzbin/internal/store"
)

// Track is one playlist entry as fetched from a metadata service,
// already adapted to the shape this workflow needs (pagination and
// per-service JSON parsing are the caller's concern, not this one's).
type Track struct {
	Title           string
	PrimaryArtist   string
	FeaturedArtists []string
	SourceID        string
}

// TrackFailure records one per-item error without aborting the run.
type TrackFailure struct {
	Track Track
	Err   error
}

// ImportSummary accumulates the outcome of one playlist import.
type ImportSummary struct {
	Imported int
	Skipped  int
	Failed   []TrackFailure
}

// PlaylistImporter runs the canonical import workflow (§4.J) for one
// source tag (e.g. "spotify:playlist:<id>").
type PlaylistImporter struct {
	store         *store.Store
	sourceTag     string
	initialStatus store.Status
}

func NewPlaylistImporter(s *store.Store, sourceTag string) *PlaylistImporter {
	return &PlaylistImporter{store: s, sourceTag: sourceTag, initialStatus: store.StatusDiscovered}
}

// ImportTracks runs the full skip-existing-or-create-and-link
// sequence over every track, never aborting on a per-item error.
// Running the same tracks twice yields no new rows (idempotent under
// retry), since existence is checked by (title, primary artist) before
// every create.
func (p *PlaylistImporter) ImportTracks(ctx context.Context, tracks []Track) ImportSummary {
	logger := log.WithComponent("workflows")
	var summary ImportSummary

	for _, t := range tracks {
		skipped, err := p.importOne(ctx, t)
		if err != nil {
			summary.Failed = append(summary.Failed, TrackFailure{Track: t, Err: err})
			logger.Warn().Err(err).Str("title", t.Title).Str("artist", t.PrimaryArtist).Msg("track import failed, continuing")
			continue
		}
		if skipped {
			summary.Skipped++
		} else {
			summary.Imported++
		}
	}
	return summary
}

func (p *PlaylistImporter) importOne(ctx context.Context, t Track) (skipped bool, err error) {
	existing, err := p.store.NewQuery().Title(t.Title).Artist(t.PrimaryArtist).Execute(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range existing {
		if strings.EqualFold(v.Title, t.Title) && strings.EqualFold(v.Artist, t.PrimaryArtist) {
			return true, nil // already present; skip-existing
		}
	}

	// CreateVideo, the artist links, and the source record must land
	// together: a failure partway through would otherwise leave a video
	// with no (or partial) artist links that the skip-existing check
	// above would then treat as already imported on the next retry.
	err = p.store.Transaction(ctx, func(ctx context.Context) error {
		v, err := p.store.CreateVideo(ctx, &store.Video{
			Title:          t.Title,
			Artist:         t.PrimaryArtist,
			Status:         p.initialStatus,
			DownloadSource: p.sourceTag,
		})
		if err != nil {
			return err
		}

		primary, err := p.store.GetOrCreateArtist(ctx, t.PrimaryArtist)
		if err != nil {
			return err
		}
		if err := p.store.LinkVideoArtist(ctx, v.ID, primary.ID, store.RolePrimary, 0); err != nil {
			return err
		}
		for i, name := range t.FeaturedArtists {
			a, err := p.store.GetOrCreateArtist(ctx, name)
			if err != nil {
				return err
			}
			if err := p.store.LinkVideoArtist(ctx, v.ID, a.ID, store.RoleFeatured, i+1); err != nil {
				return err
			}
		}
		if t.SourceID != "" {
			if err := p.store.RecordSource(ctx, store.VideoSource{
				VideoID: v.ID, Platform: p.sourceTag, SourceVideoID: t.SourceID, IsPrimary: true,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return false, err
}
