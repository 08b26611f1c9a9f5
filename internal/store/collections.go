// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"time"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
)

// CreateCollection creates a new named collection. Name collisions
// (by normalized name) are reported as duplicates rather than merged,
// since collections are user-curated and not dedup'd like artists.
func (s *Store) CreateCollection(ctx context.Context, name, description string) (*Collection, error) {
	norm := normalizeName(name)
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO collections(name, normalized_name, description, created_at, updated_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, 0)`, name, norm, description, iso(now), iso(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ferrors.Duplicate("collection", name)
		}
		return nil, ferrors.TransactionFailed(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, ferrors.TransactionFailed(err)
	}
	return &Collection{ID: id, Name: name, NormalizedName: norm, Description: description, CreatedAt: now, UpdatedAt: now}, nil
}

// AddVideoToCollection appends (or repositions) a video within a
// collection.
func (s *Store) AddVideoToCollection(ctx context.Context, videoID, collectionID int64, position int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO video_collections(video_id, collection_id, position) VALUES (?, ?, ?)
		ON CONFLICT(video_id, collection_id) DO UPDATE SET position = excluded.position`,
		videoID, collectionID, position)
	if err != nil {
		return ferrors.TransactionFailed(err)
	}
	return nil
}

// RemoveVideoFromCollection unlinks a video from a collection.
func (s *Store) RemoveVideoFromCollection(ctx context.Context, videoID, collectionID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM video_collections WHERE video_id = ? AND collection_id = ?`, videoID, collectionID)
	if err != nil {
		return ferrors.TransactionFailed(err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return contains(msg, "UNIQUE constraint failed") || contains(msg, "constraint failed: UNIQUE")
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
