// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "os"

// DockerConfigDir and DockerLibraryDir are the containerized roots selected by
// FUZZBIN_DOCKER=1 (§6).
const (
	DockerConfigDir  = "/config"
	DockerLibraryDir = "/music_videos"
)

// ApplyEnvOverrides resolves FUZZBIN_CONFIG_DIR, FUZZBIN_LIBRARY_DIR,
// and FUZZBIN_DOCKER over cfg, in that order of precedence (explicit
// dir vars win over the docker default).
func ApplyEnvOverrides(cfg AppConfig) AppConfig {
	if os.Getenv("FUZZBIN_DOCKER") == "1" {
		cfg.ConfigDir = DockerConfigDir
		cfg.LibraryDir = DockerLibraryDir
	}
	if v := os.Getenv("FUZZBIN_CONFIG_DIR"); v != "" {
		cfg.ConfigDir = v
	}
	if v := os.Getenv("FUZZBIN_LIBRARY_DIR"); v != "" {
		cfg.LibraryDir = v
	}
	return cfg
}
