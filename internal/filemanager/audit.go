// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filemanager

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// IssueKind enumerates the typed findings an audit produces. The
// audit never repairs anything; repair is a separate explicit action.
type IssueKind string

const (
	IssueMissingFile        IssueKind = "missing_file"
	IssueBrokenNFO          IssueKind = "broken_nfo"
	IssueOrphanedFile       IssueKind = "orphaned_file"
	IssueOrphanedThumbnail  IssueKind = "orphaned_thumbnail"
	IssuePathMismatch       IssueKind = "path_mismatch" // reserved
)

type Issue struct {
	Kind    IssueKind
	VideoID int64
	Path    string
}

// LibraryReport is the result of VerifyLibrary.
type LibraryReport struct {
	VideosScanned int
	FilesScanned  int
	Issues        []Issue
}

// VerifyLibrary walks every non-deleted video and, optionally, every
// file under library_dir (excluding trash_dir and the thumbnail cache
// dir) and the thumbnail cache itself (§4.I). It only reports; it
// never repairs.
func (m *Manager) VerifyLibrary(ctx context.Context, thumbnailDir string, scanOrphans, scanThumbnails bool) (*LibraryReport, error) {
	videos, err := m.store.NewQuery().IncludeDeleted(false).Execute(ctx)
	if err != nil {
		return nil, err
	}

	report := &LibraryReport{VideosScanned: len(videos)}
	knownPaths := map[string]bool{}
	knownIDs := map[int64]bool{}

	for _, v := range videos {
		knownIDs[v.ID] = true
		if v.VideoFilePath != "" {
			knownPaths[v.VideoFilePath] = true
			if _, err := os.Stat(v.VideoFilePath); err != nil {
				report.Issues = append(report.Issues, Issue{Kind: IssueMissingFile, VideoID: v.ID, Path: v.VideoFilePath})
			}
		}
		if v.NFOFilePath != "" {
			knownPaths[v.NFOFilePath] = true
			if _, err := os.Stat(v.NFOFilePath); err != nil {
				report.Issues = append(report.Issues, Issue{Kind: IssueBrokenNFO, VideoID: v.ID, Path: v.NFOFilePath})
			}
		}
	}

	if scanOrphans {
		_ = filepath.Walk(m.cfg.LibraryDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if path == m.cfg.TrashDir || path == thumbnailDir {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(path, m.cfg.TrashDir+string(filepath.Separator)) {
				return nil
			}
			report.FilesScanned++
			if !knownPaths[path] {
				report.Issues = append(report.Issues, Issue{Kind: IssueOrphanedFile, Path: path})
			}
			return nil
		})
	}

	if scanThumbnails && thumbnailDir != "" {
		entries, err := os.ReadDir(thumbnailDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				id, ok := thumbnailVideoID(e.Name())
				if !ok || !knownIDs[id] {
					report.Issues = append(report.Issues, Issue{Kind: IssueOrphanedThumbnail, Path: filepath.Join(thumbnailDir, e.Name())})
				}
			}
		}
	}

	return report, nil
}

// thumbnailVideoID parses the "<video_id>.jpg" naming convention
// (§6: config_dir/.thumbnails/<video_id>.jpg).
func thumbnailVideoID(name string) (int64, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	var id int64
	var parsed int
	for _, r := range base {
		if r < '0' || r > '9' {
			return 0, false
		}
		id = id*10 + int64(r-'0')
		parsed++
	}
	return id, parsed > 0
}
