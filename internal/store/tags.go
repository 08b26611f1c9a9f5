// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
)

// TagVideo attaches tag name to a video, creating the tag row if
// needed and incrementing its usage_count. Re-tagging the same
// (video, tag) pair is a no-op.
func (s *Store) TagVideo(ctx context.Context, videoID int64, name string) error {
	norm := normalizeName(name)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var tagID int64
		row := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE normalized_name = ?`, norm)
		err := row.Scan(&tagID)
		switch {
		case err == sql.ErrNoRows:
			res, err := tx.ExecContext(ctx, `INSERT INTO tags(name, normalized_name, usage_count) VALUES (?, ?, 0)`, name, norm)
			if err != nil {
				return ferrors.TransactionFailed(err)
			}
			tagID, err = res.LastInsertId()
			if err != nil {
				return ferrors.TransactionFailed(err)
			}
		case err != nil:
			return ferrors.TransactionFailed(err)
		}

		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO video_tags(video_id, tag_id) VALUES (?, ?)`, videoID, tagID)
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		if n > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE tags SET usage_count = usage_count + 1 WHERE id = ?`, tagID); err != nil {
				return ferrors.TransactionFailed(err)
			}
		}
		return nil
	})
}

// UntagVideo detaches tag name from a video and decrements its
// usage_count, deleting the tag row once the count reaches zero.
func (s *Store) UntagVideo(ctx context.Context, videoID int64, name string) error {
	norm := normalizeName(name)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var tagID int64
		row := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE normalized_name = ?`, norm)
		if err := row.Scan(&tagID); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return ferrors.TransactionFailed(err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM video_tags WHERE video_id = ? AND tag_id = ?`, videoID, tagID)
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		if n > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE tags SET usage_count = usage_count - 1 WHERE id = ?`, tagID); err != nil {
				return ferrors.TransactionFailed(err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ? AND usage_count <= 0`, tagID); err != nil {
				return ferrors.TransactionFailed(err)
			}
		}
		return nil
	})
}

// reconcileTagUsageForVideo adjusts every tag attached to videoID by
// delta. Soft delete/restore don't touch video_tags rows, so without
// this the §8 invariant (usage_count counts only non-deleted videos)
// drifts as soon as a tagged video is soft-deleted. Unlike UntagVideo,
// this never deletes the tag row at zero: tag_id is referenced by
// video_tags ON DELETE CASCADE, so deleting it here would also wipe
// the junction row a later Restore needs to bring the link back.
func reconcileTagUsageForVideo(ctx context.Context, tx *sql.Tx, videoID int64, delta int) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE tags SET usage_count = usage_count + ?
		WHERE id IN (SELECT tag_id FROM video_tags WHERE video_id = ?)`, delta, videoID); err != nil {
		return ferrors.TransactionFailed(err)
	}
	return nil
}

// ListTagsForVideo returns every tag attached to a video.
func (s *Store) ListTagsForVideo(ctx context.Context, videoID int64) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.normalized_name, t.usage_count
		FROM tags t JOIN video_tags vt ON vt.tag_id = t.id
		WHERE vt.video_id = ? ORDER BY t.name`, videoID)
	if err != nil {
		return nil, ferrors.TransactionFailed(err)
	}
	defer rows.Close()
	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.NormalizedName, &t.UsageCount); err != nil {
			return nil, ferrors.TransactionFailed(err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
