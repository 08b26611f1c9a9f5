// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package store is the indexed library store (component F): schema,
// migrations, transactions, soft-delete, full-text search, CRUD, and
// status history over videos, artists, collections, and tags.
package store

import "time"

// Status is one of the closed set of lifecycle states (§4.G).
type Status string

const (
	StatusDiscovered  Status = "discovered"
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusFailed      Status = "failed"
	StatusImported    Status = "imported"
	StatusOrganized   Status = "organized"
	StatusArchived    Status = "archived"
	StatusMissing     Status = "missing"
)

// ValidStatuses is the closed set, used for CHECK-equivalent
// application-level validation before every status write.
var ValidStatuses = map[Status]bool{
	StatusDiscovered: true, StatusQueued: true, StatusDownloading: true,
	StatusDownloaded: true, StatusFailed: true, StatusImported: true,
	StatusOrganized: true, StatusArchived: true, StatusMissing: true,
}

// ArtistRole is the video_artists.role enum.
type ArtistRole string

const (
	RolePrimary  ArtistRole = "primary"
	RoleFeatured ArtistRole = "featured"
)

// Video is the central entity (§3).
type Video struct {
	ID     int64
	Title  string
	Artist string
	Album  string
	Year   *int
	Director string
	Genre    string
	Studio   string

	VideoFilePath  string
	NFOFilePath    string
	FileSize       *int64
	FileChecksum   string
	HashAlgorithm  string
	FileVerifiedAt *time.Time

	Status            Status
	StatusChangedAt   time.Time
	StatusMessage     string
	DownloadSource    string
	DownloadAttempts  int
	LastDownloadError string

	IMVDBVideoID string
	YouTubeID    string
	VimeoID      string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// Artist is dedup'd by normalized name (§3).
type Artist struct {
	ID             int64
	Name           string
	NormalizedName string
	IMVDBEntityID  string
	Biography      string
	ImageURL       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// Director mirrors Artist's dedup pattern (supplemented from the
// original's dedicated directors table; §3 only names director as a
// scalar field on Video, so this is additive, not substitutive).
type Director struct {
	ID             int64
	Name           string
	NormalizedName string
	IMVDBEntityID  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// Collection is a named ordered list of videos (§3).
type Collection struct {
	ID             int64
	Name           string
	NormalizedName string
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// Tag carries a live usage_count maintained by the store's write path.
type Tag struct {
	ID             int64
	Name           string
	NormalizedName string
	UsageCount     int
}

// StatusHistoryEntry is one append-only row in video_status_history.
type StatusHistoryEntry struct {
	ID           int64
	VideoID      int64
	OldStatus    string
	NewStatus    string
	ChangedAt    time.Time
	Reason       string
	ChangedBy    string
	MetadataJSON string
}

// VideoSource records a (platform, source id) a video was discovered
// under (supplemented provenance trail; see SPEC_FULL.md).
type VideoSource struct {
	ID            int64
	VideoID       int64
	Platform      string
	SourceVideoID string
	IsPrimary     bool
	URL           string
	CreatedAt     time.Time
}
