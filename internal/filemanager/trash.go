// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filemanager

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
	"github.com/fuzzbin/fuzzbin/internal/store"
)

// trashPathFor mirrors src's path relative to library_dir under
// trash_dir, falling back to just the basename when src falls outside
// library_dir (§4.I).
func (m *Manager) trashPathFor(src string) string {
	rel, err := filepath.Rel(m.cfg.LibraryDir, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Join(m.cfg.TrashDir, filepath.Base(src))
	}
	return filepath.Join(m.cfg.TrashDir, rel)
}

// SoftDelete moves a video (and its NFO, if present) under trash_dir,
// then marks the store row deleted. Single-move, rollback-free: it
// rejects outright if the trash destination already exists.
func (m *Manager) SoftDelete(ctx context.Context, videoID int64, videoPath, nfoPath string) error {
	trashVideo := m.trashPathFor(videoPath)
	if _, err := os.Stat(trashVideo); err == nil {
		return ferrors.Integrity("TargetExists", "trash destination already exists: %s", trashVideo)
	}
	if err := moveFile(videoPath, trashVideo); err != nil {
		return ferrors.TransactionFailed(err)
	}

	trashNFO := ""
	if nfoPath != "" {
		if _, err := os.Stat(nfoPath); err == nil {
			trashNFO = m.trashPathFor(nfoPath)
			if err := moveFile(nfoPath, trashNFO); err != nil {
				return ferrors.TransactionFailed(err)
			}
		}
	}

	u := store.VideoUpdate{VideoFilePath: &trashVideo}
	if trashNFO != "" {
		u.NFOFilePath = &trashNFO
	}
	if err := m.store.UpdateVideo(ctx, videoID, u); err != nil {
		return err
	}
	return m.store.SoftDelete(ctx, videoID)
}

// Restore reverses SoftDelete: moves the video (and NFO) back to
// their original library paths and clears the deleted flag.
func (m *Manager) Restore(ctx context.Context, videoID int64, originalVideoPath, originalNFOPath string) error {
	v, err := m.store.GetVideo(ctx, videoID, true)
	if err != nil {
		return err
	}
	if _, err := os.Stat(originalVideoPath); err == nil {
		return ferrors.Integrity("TargetExists", "restore destination already exists: %s", originalVideoPath)
	}
	if err := moveFile(v.VideoFilePath, originalVideoPath); err != nil {
		return ferrors.TransactionFailed(err)
	}
	u := store.VideoUpdate{VideoFilePath: &originalVideoPath}
	if v.NFOFilePath != "" && originalNFOPath != "" {
		if _, err := os.Stat(v.NFOFilePath); err == nil {
			if err := moveFile(v.NFOFilePath, originalNFOPath); err != nil {
				return ferrors.TransactionFailed(err)
			}
			u.NFOFilePath = &originalNFOPath
		}
	}
	if err := m.store.UpdateVideo(ctx, videoID, u); err != nil {
		return err
	}
	return m.store.Restore(ctx, videoID)
}

// HardDelete removes the video file, its NFO, and its thumbnail (if
// present), then cascades the store row and every junction/history
// row referencing it.
func (m *Manager) HardDelete(ctx context.Context, videoID int64, videoPath, nfoPath, thumbnailPath string) error {
	for _, p := range []string{videoPath, nfoPath, thumbnailPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return ferrors.TransactionFailed(err)
		}
	}
	return m.store.HardDelete(ctx, videoID)
}
