// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"strings"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
	"github.com/fuzzbin/fuzzbin/internal/log"
)

// sortable is the whitelist for OrderBy; anything else is silently
// ignored with a log line rather than rejected (§4.F).
var sortable = map[string]bool{
	"title": true, "artist": true, "year": true, "status": true,
	"created_at": true, "updated_at": true, "status_changed_at": true,
}

// Query is a fluent builder over the videos table.
type Query struct {
	s              *Store
	likeConds      []string
	likeArgs       []any
	eqConds        []string
	eqArgs         []any
	yearFrom       *int
	yearTo         *int
	tagName        string
	collectionName string
	searchTerm     string
	includeDeleted bool
	orderField     string
	orderDesc      bool
	limitN         *int
	offsetN        *int
}

// NewQuery starts a query over this store's videos.
func (s *Store) NewQuery() *Query { return &Query{s: s} }

func (q *Query) like(col, v string) *Query {
	if v == "" {
		return q
	}
	q.likeConds = append(q.likeConds, col+" LIKE ? COLLATE NOCASE")
	q.likeArgs = append(q.likeArgs, "%"+v+"%")
	return q
}

func (q *Query) Artist(v string) *Query   { return q.like("videos.artist", v) }
func (q *Query) Title(v string) *Query    { return q.like("videos.title", v) }
func (q *Query) Album(v string) *Query    { return q.like("videos.album", v) }
func (q *Query) Genre(v string) *Query    { return q.like("videos.genre", v) }
func (q *Query) Director(v string) *Query { return q.like("videos.director", v) }

func (q *Query) Year(y int) *Query {
	q.eqConds = append(q.eqConds, "videos.year = ?")
	q.eqArgs = append(q.eqArgs, y)
	return q
}

// YearRange restricts to [from, to] inclusive.
func (q *Query) YearRange(from, to int) *Query {
	q.yearFrom, q.yearTo = &from, &to
	return q
}

func (q *Query) Status(s Status) *Query {
	q.eqConds = append(q.eqConds, "videos.status = ?")
	q.eqArgs = append(q.eqArgs, string(s))
	return q
}

func (q *Query) DownloadSource(v string) *Query {
	q.eqConds = append(q.eqConds, "videos.download_source = ?")
	q.eqArgs = append(q.eqArgs, v)
	return q
}

func (q *Query) FilePath(v string) *Query {
	q.eqConds = append(q.eqConds, "videos.video_file_path = ?")
	q.eqArgs = append(q.eqArgs, v)
	return q
}

func (q *Query) IMVDBVideoID(v string) *Query {
	q.eqConds = append(q.eqConds, "videos.imvdb_video_id = ?")
	q.eqArgs = append(q.eqArgs, v)
	return q
}

func (q *Query) YouTubeID(v string) *Query {
	q.eqConds = append(q.eqConds, "videos.youtube_id = ?")
	q.eqArgs = append(q.eqArgs, v)
	return q
}

func (q *Query) VimeoID(v string) *Query {
	q.eqConds = append(q.eqConds, "videos.vimeo_id = ?")
	q.eqArgs = append(q.eqArgs, v)
	return q
}

// Tag restricts to videos carrying this tag name.
func (q *Query) Tag(name string) *Query {
	q.tagName = name
	return q
}

// Collection restricts to videos in this named collection.
func (q *Query) Collection(name string) *Query {
	q.collectionName = name
	return q
}

// Search switches the underlying query to join against the full-text
// index, with query as the MATCH operand.
func (q *Query) Search(query string) *Query {
	q.searchTerm = query
	return q
}

// IncludeDeleted toggles off the default WHERE is_deleted = 0.
func (q *Query) IncludeDeleted(flag bool) *Query {
	q.includeDeleted = flag
	return q
}

// OrderBy sorts by field (must be in the sortable whitelist; an
// unknown field is logged and ignored, never an error).
func (q *Query) OrderBy(field string, desc bool) *Query {
	if !sortable[field] {
		log.WithComponent("store").Warn().Str("field", field).Msg("ignoring unsortable order_by field")
		return q
	}
	q.orderField, q.orderDesc = field, desc
	return q
}

func (q *Query) Limit(n int) *Query  { q.limitN = &n; return q }
func (q *Query) Offset(n int) *Query { q.offsetN = &n; return q }

func (q *Query) build(forCount bool) (string, []any) {
	var joins []string
	var where []string
	var args []any

	where = append(where, q.likeConds...)
	args = append(args, q.likeArgs...)
	where = append(where, q.eqConds...)
	args = append(args, q.eqArgs...)

	if q.yearFrom != nil {
		where = append(where, "videos.year BETWEEN ? AND ?")
		args = append(args, *q.yearFrom, *q.yearTo)
	}
	if !q.includeDeleted {
		where = append(where, "videos.is_deleted = 0")
	}
	if q.tagName != "" {
		joins = append(joins, "JOIN video_tags vt ON vt.video_id = videos.id JOIN tags t ON t.id = vt.tag_id")
		where = append(where, "t.normalized_name = ?")
		args = append(args, normalizeName(q.tagName))
	}
	if q.collectionName != "" {
		joins = append(joins, "JOIN video_collections vc ON vc.video_id = videos.id JOIN collections c ON c.id = vc.collection_id")
		where = append(where, "c.normalized_name = ?")
		args = append(args, normalizeName(q.collectionName))
	}
	if q.searchTerm != "" {
		joins = append(joins, "JOIN videos_fts ON videos_fts.rowid = videos.id")
		where = append(where, "videos_fts MATCH ?")
		args = append(args, q.searchTerm)
	}

	selectCols := videoColumns
	if forCount {
		selectCols = "COUNT(*)"
	}
	sb := strings.Builder{}
	sb.WriteString("SELECT " + selectCols + " FROM videos ")
	sb.WriteString(strings.Join(joins, " "))
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if !forCount {
		if q.orderField != "" {
			dir := "ASC"
			if q.orderDesc {
				dir = "DESC"
			}
			sb.WriteString(" ORDER BY videos." + q.orderField + " " + dir)
		}
		if q.limitN != nil {
			sb.WriteString(" LIMIT ?")
			args = append(args, *q.limitN)
			if q.offsetN != nil {
				sb.WriteString(" OFFSET ?")
				args = append(args, *q.offsetN)
			}
		}
	}
	return sb.String(), args
}

// Execute runs the query and returns matching videos.
func (q *Query) Execute(ctx context.Context) ([]*Video, error) {
	sqlStr, args := q.build(false)
	rows, err := q.s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, ferrors.InvalidQuery("%v", err)
	}
	defer rows.Close()
	var out []*Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, ferrors.TransactionFailed(err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the number of matching rows with limit/offset removed.
func (q *Query) Count(ctx context.Context) (int, error) {
	sqlStr, args := q.build(true)
	var n int
	if err := q.s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, ferrors.InvalidQuery("%v", err)
	}
	return n, nil
}
