// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filemanager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fuzzbin/fuzzbin/internal/store"
)

func TestFindAllDuplicates_UpgradesOverlapToBoth(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	root := t.TempDir()
	videoA := filepath.Join(root, "a.mp4")
	videoB := filepath.Join(root, "b.mp4")
	writeFile(t, videoA, "identical bytes")
	writeFile(t, videoB, "identical bytes")

	hashA, err := HashFile(videoA, HashSHA256, 0)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	subject, err := s.CreateVideo(ctx, &store.Video{Title: "Money", Artist: "Pink Floyd", VideoFilePath: videoA, FileChecksum: hashA})
	if err != nil {
		t.Fatalf("CreateVideo subject: %v", err)
	}
	// Same hash AND same (title, artist): should merge to match_type "both".
	_, err = s.CreateVideo(ctx, &store.Video{Title: "Money", Artist: "Pink Floyd", VideoFilePath: videoB, FileChecksum: hashA})
	if err != nil {
		t.Fatalf("CreateVideo dup: %v", err)
	}

	dups, err := m.FindAllDuplicates(ctx, subject)
	if err != nil {
		t.Fatalf("FindAllDuplicates: %v", err)
	}
	if len(dups) != 1 {
		t.Fatalf("expected exactly one duplicate candidate, got %d: %+v", len(dups), dups)
	}
	if dups[0].MatchType != "both" || dups[0].Confidence != 1.0 {
		t.Fatalf("expected match_type=both confidence=1.0, got %+v", dups[0])
	}
}

func TestFindDuplicatesByMetadata_ScoresByYearAndAlbum(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	year := 1994
	subject, err := s.CreateVideo(ctx, &store.Video{Title: "Shine On", Artist: "Pink Floyd", Year: &year, Album: "Pulse"})
	if err != nil {
		t.Fatalf("CreateVideo subject: %v", err)
	}
	_, err = s.CreateVideo(ctx, &store.Video{Title: "shine on ", Artist: " Pink Floyd", Year: &year, Album: "pulse"})
	if err != nil {
		t.Fatalf("CreateVideo dup: %v", err)
	}

	dups, err := m.FindDuplicatesByMetadata(ctx, subject)
	if err != nil {
		t.Fatalf("FindDuplicatesByMetadata: %v", err)
	}
	if len(dups) != 1 {
		t.Fatalf("expected one metadata match, got %d", len(dups))
	}
	if dups[0].Confidence != 0.9 {
		t.Fatalf("expected confidence 0.7+0.1(year)+0.1(album)=0.9, got %v", dups[0].Confidence)
	}
}

func TestFindAllDuplicates_SortsByConfidenceDescending(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	subject, err := s.CreateVideo(ctx, &store.Video{Title: "Wish You Were Here", Artist: "Pink Floyd", FileChecksum: "checksum-1"})
	if err != nil {
		t.Fatalf("CreateVideo subject: %v", err)
	}
	// Hash-only match (same checksum, different title): confidence 1.0.
	_, err = s.CreateVideo(ctx, &store.Video{Title: "Shine On", Artist: "Pink Floyd", FileChecksum: "checksum-1"})
	if err != nil {
		t.Fatalf("CreateVideo hash match: %v", err)
	}
	// Metadata-only match (no year/album agreement): confidence 0.7.
	_, err = s.CreateVideo(ctx, &store.Video{Title: "Wish You Were Here", Artist: "Pink Floyd"})
	if err != nil {
		t.Fatalf("CreateVideo weak match: %v", err)
	}

	dups, err := m.FindAllDuplicates(ctx, subject)
	if err != nil {
		t.Fatalf("FindAllDuplicates: %v", err)
	}

	var matchTypes []string
	for _, d := range dups {
		matchTypes = append(matchTypes, d.MatchType)
	}
	want := []string{"hash", "metadata"}
	if diff := cmp.Diff(want, matchTypes); diff != "" {
		t.Fatalf("unexpected match types (-want +got):\n%s", diff)
	}
}
