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

// GetOrCreateArtist finds an artist by normalized name, or creates one
// if none exists, deduplicating case/whitespace/featured-artist
// variants onto a single row (§3).
func (s *Store) GetOrCreateArtist(ctx context.Context, name string) (*Artist, error) {
	norm := normalizeName(name)
	var a *Artist
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getArtistByNormalized(ctx, tx, norm)
		if err != nil && ferrors.KindOf(err) != ferrors.KindNotFound {
			return err
		}
		if existing != nil {
			a = existing
			return nil
		}
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO artists(name, normalized_name, created_at, updated_at, is_deleted)
			VALUES (?, ?, ?, ?, 0)`, name, norm, iso(now), iso(now))
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		a = &Artist{ID: id, Name: name, NormalizedName: norm, CreatedAt: now, UpdatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func getArtistByNormalized(ctx context.Context, q querier, norm string) (*Artist, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, normalized_name, imvdb_entity_id, biography, image_url, created_at, updated_at
		FROM artists WHERE normalized_name = ? AND is_deleted = 0`, norm)
	var a Artist
	var imvdb, bio, img sql.NullString
	var created, updated string
	if err := row.Scan(&a.ID, &a.Name, &a.NormalizedName, &imvdb, &bio, &img, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, ferrors.NotFound("artist", norm)
		}
		return nil, ferrors.TransactionFailed(err)
	}
	a.IMVDBEntityID, a.Biography, a.ImageURL = imvdb.String, bio.String, img.String
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &a, nil
}

// GetArtist returns an artist by id.
func (s *Store) GetArtist(ctx context.Context, id int64) (*Artist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, normalized_name, imvdb_entity_id, biography, image_url, created_at, updated_at
		FROM artists WHERE id = ? AND is_deleted = 0`, id)
	var a Artist
	var imvdb, bio, img sql.NullString
	var created, updated string
	if err := row.Scan(&a.ID, &a.Name, &a.NormalizedName, &imvdb, &bio, &img, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, ferrors.NotFound("artist", id)
		}
		return nil, ferrors.TransactionFailed(err)
	}
	a.IMVDBEntityID, a.Biography, a.ImageURL = imvdb.String, bio.String, img.String
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &a, nil
}

// LinkVideoArtist associates a video with an artist under a role,
// idempotently (re-linking the same pair/role is a no-op).
func (s *Store) LinkVideoArtist(ctx context.Context, videoID, artistID int64, role ArtistRole, position int) error {
	_, err := s.querierFor(ctx).ExecContext(ctx, `
		INSERT OR IGNORE INTO video_artists(video_id, artist_id, role, position) VALUES (?, ?, ?, ?)`,
		videoID, artistID, string(role), position)
	if err != nil {
		return ferrors.TransactionFailed(err)
	}
	return nil
}

func iso(t time.Time) string { return t.Format(time.RFC3339Nano) }
