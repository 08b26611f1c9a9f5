// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config implements the typed configuration surface (component
// K): a single AppConfig loaded from YAML, per-field safety
// classification for runtime changes, hot reload on file change, and a
// bounded undo/redo history of applied changes.
package config

import "time"

// AppConfig is the store's public view of configuration: nested option
// groups matching the recognized top-level YAML keys (§6).
type AppConfig struct {
	ConfigDir  string `yaml:"config_dir"`
	LibraryDir string `yaml:"library_dir"`

	Logging   LoggingConfig          `yaml:"logging"`
	APIs      map[string]ServiceAuth `yaml:"apis"`
	YTDLP     YTDLPConfig            `yaml:"ytdlp"`
	FFProbe   FFProbeConfig          `yaml:"ffprobe"`
	Thumbnail ThumbnailConfig        `yaml:"thumbnail"`
	NFO       NFOConfig              `yaml:"nfo"`
	Organizer OrganizerConfig        `yaml:"organizer"`
	Tags      TagsConfig             `yaml:"tags"`
	Backup    BackupConfig           `yaml:"backup"`
	Trash     TrashSchedule          `yaml:"trash"`
}

type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	File   LoggingFileConfig `yaml:"file"`
}

type LoggingFileConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ServiceAuth carries one metadata service's auth strategy
// (apis.<name>.auth). Only one of the credential fields is populated,
// selected by Strategy.
type ServiceAuth struct {
	Strategy string `yaml:"strategy"` // "none", "api_key", "oauth2", "basic"
	APIKey   string `yaml:"api_key,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
	Secret   string `yaml:"client_secret,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

type YTDLPConfig struct {
	BinaryPath string `yaml:"binary_path"`
	FormatSpec string `yaml:"format_spec"`
	GeoBypass  bool   `yaml:"geo_bypass"`
}

type FFProbeConfig struct {
	BinaryPath string        `yaml:"binary_path"`
	Timeout    time.Duration `yaml:"timeout"`
}

type ThumbnailConfig struct {
	CacheDir string `yaml:"cache_dir"`
}

type NFOConfig struct {
	FeaturedArtists    bool `yaml:"featured_artists"`
	WriteArtistNFO     bool `yaml:"write_artist_nfo"`
	WriteMusicVideoNFO bool `yaml:"write_musicvideo_nfo"`
}

type OrganizerConfig struct {
	PathPattern        string `yaml:"path_pattern"`
	NormalizeFilenames bool   `yaml:"normalize_filenames"`
}

type TagsConfig struct {
	Normalize  bool             `yaml:"normalize"`
	AutoDecade AutoDecadeConfig `yaml:"auto_decade"`
}

type AutoDecadeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
}

type BackupConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Schedule       string `yaml:"schedule"` // cron expression
	RetentionCount int    `yaml:"retention_count"`
	OutputDir      string `yaml:"output_dir"`
}

// TrashSchedule carries the ambient backup/trash scheduler's schedule
// and retention policy, plus the trash_dir path string; the file
// manager takes the same path as its own FileManagerConfig.TrashDir
// (Open Question #2 decision).
type TrashSchedule struct {
	TrashDir      string `yaml:"trash_dir"`
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
}
