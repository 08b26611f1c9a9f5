// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filemanager

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
	"github.com/fuzzbin/fuzzbin/internal/log"
	"github.com/fuzzbin/fuzzbin/internal/store"
)

// Manager owns on-disk layout operations and the store writes that
// must accompany them.
type Manager struct {
	cfg   FileManagerConfig
	store *store.Store
}

func New(cfg FileManagerConfig, s *store.Store) *Manager {
	return &Manager{cfg: cfg, store: s}
}

// TargetPaths names the destination video/NFO paths a move resolves to.
type TargetPaths struct {
	Video string
	NFO   string
}

// rollbackEntry records one file move so it can be undone in reverse
// order if a later step in the same critical section fails.
type rollbackEntry struct {
	current  string
	original string
}

// MoveVideoAtomic implements the critical path (§4.I): verify source
// and target, move video (and NFO if given) with hash verification,
// update the store, and roll back every completed move on any later
// failure. dryRun validates and returns the target paths without
// touching the filesystem or the store.
func (m *Manager) MoveVideoAtomic(ctx context.Context, videoID int64, srcVideo string, target TargetPaths, srcNFO string, dryRun bool) (TargetPaths, error) {
	logger := log.WithComponent("filemanager")

	if _, err := os.Stat(srcVideo); err != nil {
		return TargetPaths{}, ferrors.Integrity("SourceMissing", "source video does not exist: %s", srcVideo)
	}
	if _, err := os.Stat(target.Video); err == nil {
		return TargetPaths{}, ferrors.Integrity("TargetExists", "target video already exists: %s", target.Video)
	}
	if dryRun {
		return target, nil
	}

	sourceHash, err := HashFile(srcVideo, m.cfg.HashAlgorithm, m.cfg.MaxHashBytes)
	if err != nil {
		return TargetPaths{}, err
	}

	var journal []rollbackEntry
	rollback := func(cause error) error {
		var rollbackErr error
		for i := len(journal) - 1; i >= 0; i-- {
			e := journal[i]
			if err := moveFile(e.current, e.original); err != nil {
				rollbackErr = err
				break
			}
		}
		if rollbackErr != nil {
			logger.Error().Err(cause).Err(rollbackErr).Msg("rollback failed; operator intervention required")
			return ferrors.Fatal("RollbackFailed", cause, rollbackErr)
		}
		return cause
	}

	if err := moveFile(srcVideo, target.Video); err != nil {
		return TargetPaths{}, rollback(err)
	}
	journal = append(journal, rollbackEntry{current: target.Video, original: srcVideo})

	if srcNFO != "" {
		if _, err := os.Stat(srcNFO); err == nil {
			if err := moveFile(srcNFO, target.NFO); err != nil {
				return TargetPaths{}, rollback(err)
			}
			journal = append(journal, rollbackEntry{current: target.NFO, original: srcNFO})
		}
	}

	targetHash, err := HashFile(target.Video, m.cfg.HashAlgorithm, m.cfg.MaxHashBytes)
	if err != nil {
		return TargetPaths{}, rollback(err)
	}
	if targetHash != sourceHash {
		return TargetPaths{}, rollback(ferrors.Integrity("HashMismatch", "post-move hash %s does not match pre-move hash %s for %s", targetHash, sourceHash, target.Video))
	}

	now := time.Now().UTC()
	status := store.StatusOrganized
	algo := string(m.cfg.HashAlgorithm)
	if err := m.store.UpdateVideo(ctx, videoID, store.VideoUpdate{
		VideoFilePath:  &target.Video,
		NFOFilePath:    &target.NFO,
		FileChecksum:   &targetHash,
		HashAlgorithm:  &algo,
		FileVerifiedAt: &now,
		Status:         &status,
	}); err != nil {
		return TargetPaths{}, rollback(err)
	}

	return target, nil
}

// moveFile renames src to dst, falling back to a chunked stream-copy
// plus source deletion when the rename fails across filesystems.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}
	return copyThenRemove(src, dst)
}

func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
