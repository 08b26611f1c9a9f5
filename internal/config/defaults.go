// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Defaults returns an AppConfig populated with the values a fresh
// install gets before any config.yaml or environment override is
// applied.
func Defaults() AppConfig {
	return AppConfig{
		ConfigDir:  "/config",
		LibraryDir: "/music_videos",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		APIs: map[string]ServiceAuth{},
		YTDLP: YTDLPConfig{
			BinaryPath: "yt-dlp",
			FormatSpec: "bestvideo+bestaudio/best",
		},
		FFProbe: FFProbeConfig{
			BinaryPath: "ffprobe",
			Timeout:    30 * time.Second,
		},
		Thumbnail: ThumbnailConfig{
			CacheDir: "/config/.thumbnails",
		},
		NFO: NFOConfig{
			FeaturedArtists:    true,
			WriteArtistNFO:     true,
			WriteMusicVideoNFO: true,
		},
		Organizer: OrganizerConfig{
			PathPattern:        "{artist}/{artist} - {title}",
			NormalizeFilenames: true,
		},
		Tags: TagsConfig{
			Normalize: true,
			AutoDecade: AutoDecadeConfig{
				Enabled: true,
				Format:  "decade",
			},
		},
		Backup: BackupConfig{
			Enabled:        true,
			Schedule:       "0 3 * * *",
			RetentionCount: 7,
			OutputDir:      "/config/backups",
		},
		Trash: TrashSchedule{
			TrashDir:      "/music_videos/.trash",
			Enabled:       true,
			Schedule:      "0 4 * * *",
			RetentionDays: 30,
		},
	}
}
