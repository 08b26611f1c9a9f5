// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package workflows

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fuzzbin/fuzzbin/internal/store"
)

func newTestImporter(t *testing.T) (*PlaylistImporter, *store.Store) {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return NewPlaylistImporter(s, "spotify:playlist:abc"), s
}

func TestImportTracks_SkipsExistingIdempotently(t *testing.T) {
	ctx := context.Background()
	p, s := newTestImporter(t)

	tracks := []Track{{Title: "Money", PrimaryArtist: "Pink Floyd", SourceID: "src1"}}

	first := p.ImportTracks(ctx, tracks)
	if first.Imported != 1 || first.Skipped != 0 || len(first.Failed) != 0 {
		t.Fatalf("first import: %+v", first)
	}

	second := p.ImportTracks(ctx, tracks)
	if second.Imported != 0 || second.Skipped != 1 || len(second.Failed) != 0 {
		t.Fatalf("second import: expected pure skip, got %+v", second)
	}

	videos, err := s.NewQuery().Title("Money").Execute(ctx)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("expected exactly one stored video after re-running the import, got %d", len(videos))
	}
}

func TestImportTracks_NeverAbortsOnPerTrackFailure(t *testing.T) {
	ctx := context.Background()
	_, s := newTestImporter(t)

	// An invalid initial status makes every CreateVideo call fail,
	// exercising the loop's "record and continue" behavior rather
	// than returning on the first error.
	bad := &PlaylistImporter{store: s, sourceTag: "spotify:playlist:abc", initialStatus: store.Status("not_a_real_status")}

	tracks := []Track{
		{Title: "Money", PrimaryArtist: "Pink Floyd"},
		{Title: "Karma Police", PrimaryArtist: "Radiohead"},
		{Title: "Creep", PrimaryArtist: "Radiohead"},
	}
	summary := bad.ImportTracks(ctx, tracks)
	if summary.Imported != 0 || summary.Skipped != 0 {
		t.Fatalf("expected zero successes, got %+v", summary)
	}
	if len(summary.Failed) != len(tracks) {
		t.Fatalf("expected every track to land in Failed without aborting the run, got %d of %d", len(summary.Failed), len(tracks))
	}
}

func TestImportTracks_LinksFeaturedArtistsInOrder(t *testing.T) {
	ctx := context.Background()
	p, s := newTestImporter(t)

	tracks := []Track{{
		Title:           "Collab",
		PrimaryArtist:   "Main Act",
		FeaturedArtists: []string{"Second Act", "Third Act"},
	}}
	summary := p.ImportTracks(ctx, tracks)
	if summary.Imported != 1 {
		t.Fatalf("expected one import, got %+v", summary)
	}

	videos, err := s.NewQuery().Title("Collab").Execute(ctx)
	if err != nil || len(videos) != 1 {
		t.Fatalf("NewQuery: %v, %d results", err, len(videos))
	}

	rows, err := s.DB().QueryContext(ctx, `
		SELECT a.name, va.role, va.position FROM video_artists va
		JOIN artists a ON a.id = va.artist_id
		WHERE va.video_id = ? ORDER BY va.role, va.position`, videos[0].ID)
	if err != nil {
		t.Fatalf("query video_artists: %v", err)
	}
	defer rows.Close()

	type link struct {
		name     string
		role     string
		position int
	}
	var links []link
	for rows.Next() {
		var l link
		if err := rows.Scan(&l.name, &l.role, &l.position); err != nil {
			t.Fatalf("scan: %v", err)
		}
		links = append(links, l)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 artist links (1 primary + 2 featured), got %+v", links)
	}

	byName := map[string]link{}
	for _, l := range links {
		byName[l.name] = l
	}
	if byName["Main Act"].role != string(store.RolePrimary) || byName["Main Act"].position != 0 {
		t.Fatalf("unexpected primary link: %+v", byName["Main Act"])
	}
	if byName["Second Act"].role != string(store.RoleFeatured) || byName["Second Act"].position != 1 {
		t.Fatalf("unexpected first featured link: %+v", byName["Second Act"])
	}
	if byName["Third Act"].role != string(store.RoleFeatured) || byName["Third Act"].position != 2 {
		t.Fatalf("unexpected second featured link: %+v", byName["Third Act"])
	}
}
