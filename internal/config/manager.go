// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/oasdiff/yaml"
)

// Manager persists AppConfig to a YAML file atomically.
type Manager struct {
	path   string
	loader *Loader
}

// NewManager returns a Manager that saves to path, reusing loader's
// last-parsed document tree (if any) to keep existing comments on
// write.
func NewManager(path string, loader *Loader) *Manager {
	return &Manager{path: path, loader: loader}
}

// Save atomically writes cfg to the config file (temp file + fsync +
// rename via renameio).
func (m *Manager) Save(cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o750); err != nil {
		return fmt.Errorf("config: mkdir %s: %w", filepath.Dir(m.path), err)
	}

	var out []byte
	var err error
	if doc := m.loader.Document(); doc != nil {
		if encErr := doc.Encode(&cfg); encErr == nil {
			out, err = yaml.Marshal(doc)
		}
	}
	if out == nil {
		out, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	pending, err := renameio.NewPendingFile(m.path)
	if err != nil {
		return fmt.Errorf("config: create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(out); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("config: atomic replace: %w", err)
	}
	return nil
}
