// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filemanager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
	"github.com/fuzzbin/fuzzbin/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	cfg := DefaultFileManagerConfig(t.TempDir(), t.TempDir())
	return New(cfg, s), s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestMoveVideoAtomic_MovesAndUpdatesStore(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	root := t.TempDir()
	src := filepath.Join(root, "incoming", "video.mp4")
	writeFile(t, src, "fake video bytes")

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Test", Artist: "Artist"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	target := TargetPaths{
		Video: filepath.Join(root, "organized", "artist", "artist_-_test.mp4"),
		NFO:   filepath.Join(root, "organized", "artist", "artist_-_test.nfo"),
	}

	got, err := m.MoveVideoAtomic(ctx, v.ID, src, target, "", false)
	if err != nil {
		t.Fatalf("MoveVideoAtomic: %v", err)
	}
	if got.Video != target.Video {
		t.Fatalf("expected target video path %q, got %q", target.Video, got.Video)
	}
	if _, err := os.Stat(target.Video); err != nil {
		t.Fatalf("expected moved file at %s: %v", target.Video, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source file to be gone after move")
	}

	updated, err := s.GetVideo(ctx, v.ID, false)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if updated.Status != store.StatusOrganized {
		t.Fatalf("expected status organized, got %q", updated.Status)
	}
	if updated.VideoFilePath != target.Video {
		t.Fatalf("expected store VideoFilePath %q, got %q", target.Video, updated.VideoFilePath)
	}
	if updated.FileChecksum == "" {
		t.Fatalf("expected a non-empty checksum to be recorded")
	}
}

func TestMoveVideoAtomic_DryRunTouchesNothing(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	root := t.TempDir()
	src := filepath.Join(root, "video.mp4")
	writeFile(t, src, "bytes")

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Test", Artist: "Artist"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	target := TargetPaths{Video: filepath.Join(root, "out", "video.mp4")}

	if _, err := m.MoveVideoAtomic(ctx, v.ID, src, target, "", true); err != nil {
		t.Fatalf("MoveVideoAtomic (dry run): %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dry run must not move the source file: %v", err)
	}
	if _, err := os.Stat(target.Video); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create the target file")
	}
}

func TestMoveVideoAtomic_SourceMissing(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Test", Artist: "Artist"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	root := t.TempDir()
	_, err = m.MoveVideoAtomic(ctx, v.ID, filepath.Join(root, "missing.mp4"), TargetPaths{Video: filepath.Join(root, "out.mp4")}, "", false)
	if ferrors.CodeOf(err) != "SourceMissing" {
		t.Fatalf("expected SourceMissing, got %v", err)
	}
}

func TestMoveVideoAtomic_TargetExists(t *testing.T) {
	ctx := context.Background()
	m, s := newTestManager(t)

	root := t.TempDir()
	src := filepath.Join(root, "video.mp4")
	writeFile(t, src, "bytes")
	target := filepath.Join(root, "out.mp4")
	writeFile(t, target, "already here")

	v, err := s.CreateVideo(ctx, &store.Video{Title: "Test", Artist: "Artist"})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	_, err = m.MoveVideoAtomic(ctx, v.ID, src, TargetPaths{Video: target}, "", false)
	if ferrors.CodeOf(err) != "TargetExists" {
		t.Fatalf("expected TargetExists, got %v", err)
	}
}

func TestHashFile_SizeCapExceeded(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "big.bin")
	writeFile(t, path, "0123456789")

	if _, err := HashFile(path, HashSHA256, 5); ferrors.CodeOf(err) != "FileTooLarge" {
		t.Fatalf("expected FileTooLarge, got %v", err)
	}
	if _, err := HashFile(path, HashSHA256, 0); err != nil {
		t.Fatalf("expected no cap to succeed, got %v", err)
	}
}
