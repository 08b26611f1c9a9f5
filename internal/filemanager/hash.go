// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package filemanager owns the on-disk layout under library_dir and
// config_dir: hashing, atomic verified moves, trash/restore, duplicate
// detection, and the library integrity audit (component I). It
// collaborates with the store but never bypasses it.
package filemanager

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
)

// HashAlgorithm selects the digest used for content verification.
type HashAlgorithm string

const (
	HashSHA256 HashAlgorithm = "sha256"
	HashXXHash HashAlgorithm = "xxhash64"
	HashMD5    HashAlgorithm = "md5"
)

const defaultChunkSize = 8 * 1024

func newHasher(algo HashAlgorithm) (hash.Hash, error) {
	switch algo {
	case HashSHA256, "":
		return sha256.New(), nil
	case HashXXHash:
		return xxhash.New(), nil
	case HashMD5:
		return md5.New(), nil
	default:
		return nil, ferrors.InvalidQuery("unknown hash algorithm %q", algo)
	}
}

// HashFile computes algo's digest of path in chunked reads, failing
// with FileTooLarge if maxBytes is positive and the file exceeds it.
func HashFile(path string, algo HashAlgorithm, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ferrors.InvalidPath("cannot open %s for hashing: %v", path, err)
	}
	defer f.Close()

	if maxBytes > 0 {
		info, err := f.Stat()
		if err != nil {
			return "", ferrors.InvalidPath("cannot stat %s: %v", path, err)
		}
		if info.Size() > maxBytes {
			return "", ferrors.Integrity("FileTooLarge", "file %s (%d bytes) exceeds hash size cap of %d bytes", path, info.Size(), maxBytes)
		}
	}

	h, err := newHasher(algo)
	if err != nil {
		return "", err
	}
	buf := make([]byte, defaultChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", ferrors.InvalidPath("reading %s for hashing: %v", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
