// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package organizer

import (
	"testing"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
)

func TestBuildMediaPaths(t *testing.T) {
	root := t.TempDir()

	fields := Fields{
		Artist: "Daft Punk",
		Title:  "Harder, Better, Faster, Stronger",
	}

	paths, err := BuildMediaPaths(root, "{artist}/{artist} - {title}", fields, true)
	if err != nil {
		t.Fatalf("BuildMediaPaths: %v", err)
	}
	if paths.VideoPath == "" || paths.NFOPath == "" {
		t.Fatalf("expected non-empty paths, got %+v", paths)
	}
	wantSuffix := "daft_punk/daft_punk - harder_better_faster_stronger.mp4"
	if got := paths.VideoPath[len(root)+1:]; got != wantSuffix {
		t.Fatalf("VideoPath suffix = %q, want %q", got, wantSuffix)
	}
}

func TestBuildMediaPaths_RejectsTagsField(t *testing.T) {
	root := t.TempDir()
	_, err := BuildMediaPaths(root, "{artist}/{tags}", Fields{Artist: "x"}, false)
	if ferrors.CodeOf(err) != "InvalidPattern" {
		t.Fatalf("expected InvalidPattern for {tags}, got %v", err)
	}
}

func TestBuildMediaPaths_RejectsUnknownField(t *testing.T) {
	root := t.TempDir()
	_, err := BuildMediaPaths(root, "{bogus}", Fields{}, false)
	if ferrors.CodeOf(err) != "InvalidPattern" {
		t.Fatalf("expected InvalidPattern for unknown field, got %v", err)
	}
}

func TestBuildMediaPaths_MissingField(t *testing.T) {
	root := t.TempDir()
	_, err := BuildMediaPaths(root, "{artist}/{title}", Fields{Artist: "x"}, false)
	if ferrors.CodeOf(err) != "MissingField" {
		t.Fatalf("expected MissingField for blank title, got %v", err)
	}
}

func TestBuildMediaPaths_FeaturedArtistsJoined(t *testing.T) {
	root := t.TempDir()
	fields := Fields{
		Artist:          "Main",
		Title:           "Song",
		FeaturedArtists: []string{"A", "B"},
	}
	paths, err := BuildMediaPaths(root, "{artist} ft. {featured_artists} - {title}", fields, false)
	if err != nil {
		t.Fatalf("BuildMediaPaths: %v", err)
	}
	want := "Main ft. A, B - Song.mp4"
	if got := paths.VideoPath[len(root)+1:]; got != want {
		t.Fatalf("VideoPath suffix = %q, want %q", got, want)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Héllo World!": "hello_world",
		"Multi   space": "multi_space",
		"UPPER-case":    "uppercase",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
