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

// GetOrCreateDirector mirrors GetOrCreateArtist's dedup pattern for
// the supplemented directors entity.
func (s *Store) GetOrCreateDirector(ctx context.Context, name string) (*Director, error) {
	norm := normalizeName(name)
	var d *Director
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getDirectorByNormalized(ctx, tx, norm)
		if err != nil && ferrors.KindOf(err) != ferrors.KindNotFound {
			return err
		}
		if existing != nil {
			d = existing
			return nil
		}
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO directors(name, normalized_name, created_at, updated_at, is_deleted)
			VALUES (?, ?, ?, ?, 0)`, name, norm, iso(now), iso(now))
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return ferrors.TransactionFailed(err)
		}
		d = &Director{ID: id, Name: name, NormalizedName: norm, CreatedAt: now, UpdatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func getDirectorByNormalized(ctx context.Context, q querier, norm string) (*Director, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, normalized_name, imvdb_entity_id, created_at, updated_at
		FROM directors WHERE normalized_name = ? AND is_deleted = 0`, norm)
	var d Director
	var imvdb sql.NullString
	var created, updated string
	if err := row.Scan(&d.ID, &d.Name, &d.NormalizedName, &imvdb, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, ferrors.NotFound("director", norm)
		}
		return nil, ferrors.TransactionFailed(err)
	}
	d.IMVDBEntityID = imvdb.String
	d.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	d.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &d, nil
}

// LinkVideoDirector associates a video with a director, idempotently.
func (s *Store) LinkVideoDirector(ctx context.Context, videoID, directorID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO video_directors(video_id, director_id) VALUES (?, ?)`, videoID, directorID)
	if err != nil {
		return ferrors.TransactionFailed(err)
	}
	return nil
}
