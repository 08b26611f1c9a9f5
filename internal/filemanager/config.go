// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filemanager

// FileManagerConfig carries everything the file manager needs that
// isn't per-call. Per SPEC_FULL.md's resolution of the
// FileManagerConfig/TrashConfig split: this struct owns the fields
// the two overlapped on (hash algorithm, hash size cap, the two
// roots); config.TrashSchedule (internal/config/types.go, component K)
// owns the retention policy and carries its own trash_dir string naming
// the same directory.
type FileManagerConfig struct {
	HashAlgorithm HashAlgorithm
	MaxHashBytes  int64
	LibraryDir    string
	TrashDir      string
}

func DefaultFileManagerConfig(libraryDir, trashDir string) FileManagerConfig {
	return FileManagerConfig{
		HashAlgorithm: HashSHA256,
		MaxHashBytes:  0,
		LibraryDir:    libraryDir,
		TrashDir:      trashDir,
	}
}
