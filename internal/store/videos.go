// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
)

// CreateVideo inserts a new video and emits its initial status-history
// row (old_status = NULL, new_status = v.Status) in the same
// transaction (§4.F).
func (s *Store) CreateVideo(ctx context.Context, v *Video) (*Video, error) {
	if v.Status == "" {
		v.Status = StatusDiscovered
	}
	if !ValidStatuses[v.Status] {
		return nil, ferrors.InvalidQuery("unknown status %q", v.Status)
	}
	if err := validateYear(v.Year); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	var created *Video
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO videos(
				title, artist, album, year, director, genre, studio,
				video_file_path, nfo_file_path, file_size, file_checksum, hash_algorithm, file_verified_at,
				status, status_changed_at, status_message, download_source, download_attempts, last_download_error,
				imvdb_video_id, youtube_id, vimeo_id,
				created_at, updated_at, is_deleted
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
			v.Title, nullIfEmpty(v.Artist), nullIfEmpty(v.Album), v.Year, nullIfEmpty(v.Director), nullIfEmpty(v.Genre), nullIfEmpty(v.Studio),
			nullIfEmpty(v.VideoFilePath), nullIfEmpty(v.NFOFilePath), v.FileSize, nullIfEmpty(v.FileChecksum), nullIfEmpty(v.HashAlgorithm), nullTime(v.FileVerifiedAt),
			string(v.Status), iso(now), nullIfEmpty(v.StatusMessage), nullIfEmpty(v.DownloadSource), v.DownloadAttempts, nullIfEmpty(v.LastDownloadError),
			nullIfEmpty(v.IMVDBVideoID), nullIfEmpty(v.YouTubeID), nullIfEmpty(v.VimeoID),
			iso(now), iso(now))
		if err != nil {
			if isUniqueViolation(err) {
				return ferrors.Duplicate("video", v.IMVDBVideoID+v.YouTubeID+v.VimeoID)
			}
			return ferrors.TransactionFailed(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		if err := insertHistory(ctx, tx, id, "", string(v.Status), "created", "", ""); err != nil {
			return err
		}
		v.ID = id
		v.StatusChangedAt = now
		v.CreatedAt = now
		v.UpdatedAt = now
		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetVideo fetches a video by id. Soft-deleted rows are excluded
// unless includeDeleted is true.
func (s *Store) GetVideo(ctx context.Context, id int64, includeDeleted bool) (*Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`
	if !includeDeleted {
		q += ` AND is_deleted = 0`
	}
	row := s.db.QueryRowContext(ctx, q, id)
	v, err := scanVideo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ferrors.NotFound("video", id)
		}
		return nil, ferrors.TransactionFailed(err)
	}
	return v, nil
}

// UpdateStatus transitions a video's status, recording history exactly
// once. A transition to the current status is a no-op (§4.F). Callers
// requiring precondition enforcement (the state-table in §4.G) go
// through the lifecycle coordinator, which checks preconditions itself
// and applies the change through UpdateVideo; this method only enforces
// the closed set.
func (s *Store) UpdateStatus(ctx context.Context, videoID int64, newStatus Status, reason, changedBy, metadataJSON string) error {
	if !ValidStatuses[newStatus] {
		return ferrors.InvalidQuery("unknown status %q", newStatus)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		row := tx.QueryRowContext(ctx, `SELECT status FROM videos WHERE id = ? AND is_deleted = 0`, videoID)
		if err := row.Scan(&current); err != nil {
			if err == sql.ErrNoRows {
				return ferrors.NotFound("video", videoID)
			}
			return ferrors.TransactionFailed(err)
		}
		if current == string(newStatus) {
			return nil
		}
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			UPDATE videos SET status = ?, status_changed_at = ?, status_message = ?, updated_at = ? WHERE id = ?`,
			string(newStatus), iso(now), nullIfEmpty(reason), iso(now), videoID); err != nil {
			return ferrors.TransactionFailed(err)
		}
		return insertHistory(ctx, tx, videoID, current, string(newStatus), reason, changedBy, metadataJSON)
	})
}

// VideoUpdate carries the mutable fields UpdateVideo may change; a nil
// pointer field means "leave unchanged".
type VideoUpdate struct {
	Title             *string
	Artist            *string
	Album             *string
	Year              *int
	Director          *string
	Genre             *string
	Studio            *string
	VideoFilePath     *string
	NFOFilePath       *string
	FileSize          *int64
	FileChecksum      *string
	HashAlgorithm     *string
	FileVerifiedAt    *time.Time
	Status            *Status
	StatusMessage     *string
	DownloadSource    *string
	DownloadAttempts  *int
	LastDownloadError *string
}

// UpdateVideo applies a partial update. If Status is set and differs
// from the current value, it is routed through the identical
// status-transition path UpdateStatus uses, so history is emitted
// exactly once regardless of which entrypoint callers use (resolves
// the overlapping update_video/update_status paths).
func (s *Store) UpdateVideo(ctx context.Context, id int64, u VideoUpdate) error {
	if err := validateYear(u.Year); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		row := tx.QueryRowContext(ctx, `SELECT status FROM videos WHERE id = ? AND is_deleted = 0`, id)
		if err := row.Scan(&current); err != nil {
			if err == sql.ErrNoRows {
				return ferrors.NotFound("video", id)
			}
			return ferrors.TransactionFailed(err)
		}

		now := time.Now().UTC()
		set := []string{"updated_at = ?"}
		args := []any{iso(now)}

		addStr := func(col string, v *string) {
			if v != nil {
				set = append(set, col+" = ?")
				args = append(args, nullIfEmpty(*v))
			}
		}
		addStr("title", u.Title)
		addStr("artist", u.Artist)
		addStr("album", u.Album)
		addStr("director", u.Director)
		addStr("genre", u.Genre)
		addStr("studio", u.Studio)
		addStr("video_file_path", u.VideoFilePath)
		addStr("nfo_file_path", u.NFOFilePath)
		addStr("file_checksum", u.FileChecksum)
		addStr("hash_algorithm", u.HashAlgorithm)
		addStr("status_message", u.StatusMessage)
		addStr("download_source", u.DownloadSource)
		addStr("last_download_error", u.LastDownloadError)
		if u.Year != nil {
			set = append(set, "year = ?")
			args = append(args, *u.Year)
		}
		if u.FileSize != nil {
			set = append(set, "file_size = ?")
			args = append(args, *u.FileSize)
		}
		if u.FileVerifiedAt != nil {
			set = append(set, "file_verified_at = ?")
			args = append(args, iso(*u.FileVerifiedAt))
		}
		if u.DownloadAttempts != nil {
			set = append(set, "download_attempts = ?")
			args = append(args, *u.DownloadAttempts)
		}

		statusChanged := u.Status != nil && string(*u.Status) != current
		if statusChanged {
			if !ValidStatuses[*u.Status] {
				return ferrors.InvalidQuery("unknown status %q", *u.Status)
			}
			set = append(set, "status = ?", "status_changed_at = ?")
			args = append(args, string(*u.Status), iso(now))
		}

		if len(set) > 1 || statusChanged {
			args = append(args, id)
			q := "UPDATE videos SET " + joinSet(set) + " WHERE id = ?"
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return ferrors.TransactionFailed(err)
			}
		}

		if statusChanged {
			reason := ""
			if u.StatusMessage != nil {
				reason = *u.StatusMessage
			}
			return insertHistory(ctx, tx, id, current, string(*u.Status), reason, "", "")
		}
		return nil
	})
}

// SoftDelete marks a video deleted without touching junction rows
// (§4.F: soft-delete does not cascade), but does decrement the
// usage_count of every tag the video carries so that count continues
// to reflect only non-deleted videos (§8).
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE videos SET is_deleted = 1, deleted_at = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`,
			iso(now), iso(now), id)
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		if n == 0 {
			return ferrors.NotFound("video", id)
		}
		return reconcileTagUsageForVideo(ctx, tx, id, -1)
	})
}

// Restore reverses a soft-delete, re-incrementing the usage_count of
// every tag the video carries to match.
func (s *Store) Restore(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE videos SET is_deleted = 0, deleted_at = NULL, updated_at = ? WHERE id = ? AND is_deleted = 1`,
			iso(time.Now().UTC()), id)
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		if n == 0 {
			return ferrors.NotFound("video", id)
		}
		return reconcileTagUsageForVideo(ctx, tx, id, 1)
	})
}

// HardDelete removes a video row and cascades junction rows and
// status history via the foreign-key ON DELETE CASCADE clauses.
func (s *Store) HardDelete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return ferrors.TransactionFailed(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ferrors.TransactionFailed(err)
	}
	if n == 0 {
		return ferrors.NotFound("video", id)
	}
	return nil
}

// RecordSource appends a provenance row for a (platform, source id)
// a video was discovered under (supplemented; see SPEC_FULL.md).
func (s *Store) RecordSource(ctx context.Context, src VideoSource) error {
	isPrimary := 0
	if src.IsPrimary {
		isPrimary = 1
	}
	_, err := s.querierFor(ctx).ExecContext(ctx, `
		INSERT OR IGNORE INTO video_sources(video_id, platform, source_video_id, is_primary, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		src.VideoID, src.Platform, src.SourceVideoID, isPrimary, nullIfEmpty(src.URL), iso(time.Now().UTC()))
	if err != nil {
		return ferrors.TransactionFailed(err)
	}
	return nil
}

// validateYear enforces §3's year constraint: absent is always valid,
// but a supplied year must fall within 1900-2100.
func validateYear(year *int) error {
	if year == nil {
		return nil
	}
	if *year < 1900 || *year > 2100 {
		return ferrors.InvalidYear(*year)
	}
	return nil
}

func joinSet(set []string) string {
	out := set[0]
	for _, s := range set[1:] {
		out += ", " + s
	}
	return out
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return iso(*t)
}

// videoColumns is qualified with the videos. prefix throughout: Tag(),
// Collection(), and Search() all join in tables (tags/collections,
// videos_fts) that carry colliding column names (id, title, artist,
// created_at, is_deleted, ...), and an unqualified SELECT list is
// ambiguous as soon as any of those joins is active.
const videoColumns = `
	videos.id, videos.title, videos.artist, videos.album, videos.year, videos.director, videos.genre, videos.studio,
	videos.video_file_path, videos.nfo_file_path, videos.file_size, videos.file_checksum, videos.hash_algorithm, videos.file_verified_at,
	videos.status, videos.status_changed_at, videos.status_message, videos.download_source, videos.download_attempts, videos.last_download_error,
	videos.imvdb_video_id, videos.youtube_id, videos.vimeo_id,
	videos.created_at, videos.updated_at, videos.deleted_at, videos.is_deleted`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*Video, error) {
	var v Video
	var artist, album, director, genre, studio sql.NullString
	var nfoPath, videoPath, checksum, hashAlgo, statusMessage, downloadSource, lastErr sql.NullString
	var imvdbID, youtubeID, vimeoID sql.NullString
	var year sql.NullInt64
	var fileSize sql.NullInt64
	var fileVerifiedAt, deletedAt sql.NullString
	var statusChangedAt, createdAt, updatedAt string
	var status string
	var isDeleted int

	if err := row.Scan(
		&v.ID, &v.Title, &artist, &album, &year, &director, &genre, &studio,
		&videoPath, &nfoPath, &fileSize, &checksum, &hashAlgo, &fileVerifiedAt,
		&status, &statusChangedAt, &statusMessage, &downloadSource, &v.DownloadAttempts, &lastErr,
		&imvdbID, &youtubeID, &vimeoID,
		&createdAt, &updatedAt, &deletedAt, &isDeleted,
	); err != nil {
		return nil, err
	}

	v.Artist, v.Album, v.Director, v.Genre, v.Studio = artist.String, album.String, director.String, genre.String, studio.String
	v.VideoFilePath, v.NFOFilePath, v.FileChecksum, v.HashAlgorithm = videoPath.String, nfoPath.String, checksum.String, hashAlgo.String
	v.StatusMessage, v.DownloadSource, v.LastDownloadError = statusMessage.String, downloadSource.String, lastErr.String
	v.IMVDBVideoID, v.YouTubeID, v.VimeoID = imvdbID.String, youtubeID.String, vimeoID.String
	v.Status = Status(status)
	v.IsDeleted = isDeleted != 0

	if year.Valid {
		y := int(year.Int64)
		v.Year = &y
	}
	if fileSize.Valid {
		v.FileSize = &fileSize.Int64
	}
	if fileVerifiedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, fileVerifiedAt.String)
		v.FileVerifiedAt = &t
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, deletedAt.String)
		v.DeletedAt = &t
	}
	v.StatusChangedAt, _ = time.Parse(time.RFC3339Nano, statusChangedAt)
	v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	v.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &v, nil
}
