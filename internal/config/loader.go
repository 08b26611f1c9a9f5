// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"

	"github.com/oasdiff/yaml"
)

// Loader reads config.yaml into an AppConfig while retaining the
// parsed document tree, so a later Save can round-trip comments
// instead of re-emitting a bare value dump.
type Loader struct {
	path string
	doc  *yaml.Node // nil until the first successful Load of an existing file
}

// NewLoader returns a Loader for the config file at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads path, falling back to Defaults() when the file does not
// exist yet, then applies environment overrides.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	raw, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return ApplyEnvOverrides(cfg), nil
	}
	if err != nil {
		return AppConfig{}, fmt.Errorf("config: read %s: %w", l.path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return AppConfig{}, fmt.Errorf("config: parse %s: %w", l.path, err)
	}
	l.doc = &doc

	if err := doc.Decode(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: decode %s: %w", l.path, err)
	}
	return ApplyEnvOverrides(cfg), nil
}

// Document returns the last successfully parsed comment-carrying tree,
// or nil if no file existed at the last Load.
func (l *Loader) Document() *yaml.Node {
	return l.doc
}
