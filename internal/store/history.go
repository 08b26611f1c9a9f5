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

func insertHistory(ctx context.Context, tx *sql.Tx, videoID int64, oldStatus, newStatus, reason, changedBy, metadataJSON string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO video_status_history(video_id, old_status, new_status, changed_at, reason, changed_by, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		videoID, nullIfEmpty(oldStatus), newStatus, iso(time.Now().UTC()), nullIfEmpty(reason), nullIfEmpty(changedBy), nullIfEmpty(metadataJSON))
	if err != nil {
		return ferrors.TransactionFailed(err)
	}
	return nil
}

// History returns every status-history row for a video, oldest first.
func (s *Store) History(ctx context.Context, videoID int64) ([]StatusHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, old_status, new_status, changed_at, reason, changed_by, metadata_json
		FROM video_status_history WHERE video_id = ? ORDER BY changed_at ASC`, videoID)
	if err != nil {
		return nil, ferrors.TransactionFailed(err)
	}
	defer rows.Close()
	var out []StatusHistoryEntry
	for rows.Next() {
		var e StatusHistoryEntry
		var old, reason, changedBy, metadata sql.NullString
		var changedAt string
		if err := rows.Scan(&e.ID, &e.VideoID, &old, &e.NewStatus, &changedAt, &reason, &changedBy, &metadata); err != nil {
			return nil, ferrors.TransactionFailed(err)
		}
		e.OldStatus, e.Reason, e.ChangedBy, e.MetadataJSON = old.String, reason.String, changedBy.String, metadata.String
		e.ChangedAt, _ = time.Parse(time.RFC3339Nano, changedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
