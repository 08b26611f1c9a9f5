// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateVideo_EmitsInitialHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.CreateVideo(ctx, &Video{Title: "Money", Artist: "Pink Floyd"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if v.Status != StatusDiscovered {
		t.Fatalf("expected default status %q, got %q", StatusDiscovered, v.Status)
	}

	hist, err := s.History(ctx, v.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 1 || hist[0].NewStatus != StatusDiscovered || hist[0].OldStatus != "" {
		t.Fatalf("expected one initial history row, got %+v", hist)
	}
}

func TestUpdateVideo_StatusChangeRoutesThroughHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.CreateVideo(ctx, &Video{Title: "Breathe", Artist: "Pink Floyd"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	queued := StatusQueued
	if err := s.UpdateVideo(ctx, v.ID, VideoUpdate{Status: &queued}); err != nil {
		t.Fatalf("UpdateVideo: %v", err)
	}

	hist, err := s.History(ctx, v.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected UpdateVideo's status change to emit exactly one more history row, got %d rows", len(hist))
	}
	if hist[1].OldStatus != StatusDiscovered || hist[1].NewStatus != StatusQueued {
		t.Fatalf("unexpected history transition: %+v", hist[1])
	}

	// Setting the same status again must stay a no-op.
	if err := s.UpdateVideo(ctx, v.ID, VideoUpdate{Status: &queued}); err != nil {
		t.Fatalf("UpdateVideo (no-op): %v", err)
	}
	hist, err = s.History(ctx, v.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected no new history row for a same-status update, got %d rows", len(hist))
	}
}

func TestTagVideo_UsageCountLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.CreateVideo(ctx, &Video{Title: "Time", Artist: "Pink Floyd"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	if err := s.TagVideo(ctx, v.ID, "Classic Rock"); err != nil {
		t.Fatalf("TagVideo: %v", err)
	}
	// Re-tagging the same (video, tag) pair must not double-count.
	if err := s.TagVideo(ctx, v.ID, "classic rock"); err != nil {
		t.Fatalf("TagVideo (re-tag): %v", err)
	}

	tags, err := s.ListTagsForVideo(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListTagsForVideo: %v", err)
	}
	if len(tags) != 1 || tags[0].UsageCount != 1 {
		t.Fatalf("expected one tag with usage_count=1, got %+v", tags)
	}

	if err := s.UntagVideo(ctx, v.ID, "Classic Rock"); err != nil {
		t.Fatalf("UntagVideo: %v", err)
	}
	tags, err = s.ListTagsForVideo(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListTagsForVideo after untag: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected tag gone after untag, got %+v", tags)
	}

	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags WHERE normalized_name = ?`, normalizeName("classic rock"))
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected the tag row to be deleted once usage_count reached zero, found %d rows", count)
	}
}

func TestQuery_FiltersByArtistAndStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.CreateVideo(ctx, &Video{Title: "Money", Artist: "Pink Floyd"}); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if _, err := s.CreateVideo(ctx, &Video{Title: "Karma Police", Artist: "Radiohead"}); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	results, err := s.NewQuery().Artist("pink").Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Money" {
		t.Fatalf("expected one match for artist LIKE pink, got %+v", results)
	}

	count, err := s.NewQuery().Status(StatusDiscovered).Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 discovered videos, got %d", count)
	}
}

func TestSoftDeleteAndRestore_ReconcileTagUsageCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.CreateVideo(ctx, &Video{Title: "Time", Artist: "Pink Floyd"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if err := s.TagVideo(ctx, v.ID, "Classic Rock"); err != nil {
		t.Fatalf("TagVideo: %v", err)
	}

	var count int
	row := s.db.QueryRowContext(ctx, `SELECT usage_count FROM tags WHERE normalized_name = ?`, normalizeName("classic rock"))
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan usage_count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected usage_count=1 before delete, got %d", count)
	}

	if err := s.SoftDelete(ctx, v.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	// The tag row (and its video_tags link) must survive the soft-delete:
	// deleting it here would cascade-delete video_tags too, which Restore
	// below has no way to recreate.
	row = s.db.QueryRowContext(ctx, `SELECT usage_count FROM tags WHERE normalized_name = ?`, normalizeName("classic rock"))
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan usage_count after soft-delete: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected usage_count=0 after soft-delete, got %d", count)
	}

	if err := s.Restore(ctx, v.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	tags, err := s.ListTagsForVideo(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListTagsForVideo: %v", err)
	}
	if len(tags) != 1 || tags[0].UsageCount != 1 {
		t.Fatalf("expected restore to re-count the tag, got %+v", tags)
	}
}

func TestQuery_TagCollectionAndSearchJoinsDoNotAmbiguateColumns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.CreateVideo(ctx, &Video{Title: "Comfortably Numb", Artist: "Pink Floyd"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if _, err := s.CreateVideo(ctx, &Video{Title: "Karma Police", Artist: "Radiohead"}); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	if err := s.TagVideo(ctx, v.ID, "Classic Rock"); err != nil {
		t.Fatalf("TagVideo: %v", err)
	}
	results, err := s.NewQuery().Tag("classic rock").Execute(ctx)
	if err != nil {
		t.Fatalf("Execute (Tag): %v", err)
	}
	if len(results) != 1 || results[0].ID != v.ID {
		t.Fatalf("expected one tagged match, got %+v", results)
	}

	coll, err := s.CreateCollection(ctx, "Best Of", "")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if err := s.AddVideoToCollection(ctx, v.ID, coll.ID, 0); err != nil {
		t.Fatalf("AddVideoToCollection: %v", err)
	}
	results, err = s.NewQuery().Collection("best of").Execute(ctx)
	if err != nil {
		t.Fatalf("Execute (Collection): %v", err)
	}
	if len(results) != 1 || results[0].ID != v.ID {
		t.Fatalf("expected one collection match, got %+v", results)
	}

	results, err = s.NewQuery().Search("Numb").Execute(ctx)
	if err != nil {
		t.Fatalf("Execute (Search): %v", err)
	}
	if len(results) != 1 || results[0].ID != v.ID {
		t.Fatalf("expected one full-text match, got %+v", results)
	}

	// Combining a LIKE filter with Search exercises the ambiguous-column
	// path for the WHERE clause too (videos_fts shares the title column).
	results, err = s.NewQuery().Search("Numb").Title("Comfortably").Execute(ctx)
	if err != nil {
		t.Fatalf("Execute (Search+Title): %v", err)
	}
	if len(results) != 1 || results[0].ID != v.ID {
		t.Fatalf("expected one match combining Search and Title, got %+v", results)
	}
}

func TestCreateAndUpdateVideo_RejectYearOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tooEarly := 1899
	if _, err := s.CreateVideo(ctx, &Video{Title: "Old", Artist: "Artist", Year: &tooEarly}); ferrors.CodeOf(err) != "InvalidYear" {
		t.Fatalf("expected InvalidYear for year %d, got %v", tooEarly, err)
	}

	ok := 1994
	v, err := s.CreateVideo(ctx, &Video{Title: "Fine", Artist: "Artist", Year: &ok})
	if err != nil {
		t.Fatalf("CreateVideo with valid year: %v", err)
	}

	tooLate := 2101
	if err := s.UpdateVideo(ctx, v.ID, VideoUpdate{Year: &tooLate}); ferrors.CodeOf(err) != "InvalidYear" {
		t.Fatalf("expected InvalidYear for year %d, got %v", tooLate, err)
	}
}

func TestNormalizeName_StripsFeaturedSuffix(t *testing.T) {
	cases := map[string]string{
		"Drake":                  "drake",
		"Drake ft. Rihanna":      "drake",
		"Drake feat. Rihanna":    "drake",
		"Drake featuring Future": "drake",
		"  Drake  ":              "drake",
	}
	for in, want := range cases {
		if got := normalizeName(in); got != want {
			t.Errorf("normalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
