// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package filemanager

import (
	"context"
	"sort"
	"strings"

	"github.com/fuzzbin/fuzzbin/internal/store"
)

// DuplicateCandidate is one match found against a subject video.
type DuplicateCandidate struct {
	VideoID    int64
	MatchType  string // "hash", "metadata", or "both"
	Confidence float64
	Snapshot   *store.Video
}

// FindDuplicatesByHash returns every other non-deleted video sharing
// subject's content hash, computing it first if unset.
func (m *Manager) FindDuplicatesByHash(ctx context.Context, subject *store.Video) ([]DuplicateCandidate, error) {
	hash := subject.FileChecksum
	if hash == "" && subject.VideoFilePath != "" {
		h, err := HashFile(subject.VideoFilePath, m.cfg.HashAlgorithm, m.cfg.MaxHashBytes)
		if err != nil {
			return nil, err
		}
		hash = h
	}
	if hash == "" {
		return nil, nil
	}
	videos, err := m.store.NewQuery().Execute(ctx)
	if err != nil {
		return nil, err
	}
	var out []DuplicateCandidate
	for _, v := range videos {
		if v.ID == subject.ID || v.FileChecksum != hash {
			continue
		}
		out = append(out, DuplicateCandidate{VideoID: v.ID, MatchType: "hash", Confidence: 1.0, Snapshot: v})
	}
	return out, nil
}

// FindDuplicatesByMetadata matches on lowercased, trimmed (title,
// artist) equality, with confidence boosted by year/album agreement.
func (m *Manager) FindDuplicatesByMetadata(ctx context.Context, subject *store.Video) ([]DuplicateCandidate, error) {
	videos, err := m.store.NewQuery().Execute(ctx)
	if err != nil {
		return nil, err
	}
	subjTitle := norm(subject.Title)
	subjArtist := norm(subject.Artist)

	var out []DuplicateCandidate
	for _, v := range videos {
		if v.ID == subject.ID {
			continue
		}
		if norm(v.Title) != subjTitle || norm(v.Artist) != subjArtist {
			continue
		}
		// Counted in tenths so 0.7+0.1+0.1 is exactly 0.9, not 0.8999….
		tenths := 7
		if subject.Year != nil && v.Year != nil && *subject.Year == *v.Year {
			tenths++
		}
		if subject.Album != "" && strings.EqualFold(subject.Album, v.Album) {
			tenths++
		}
		confidence := float64(tenths) / 10
		if confidence > 0.95 {
			confidence = 0.95
		}
		out = append(out, DuplicateCandidate{VideoID: v.ID, MatchType: "metadata", Confidence: confidence, Snapshot: v})
	}
	return out, nil
}

// FindAllDuplicates unions the hash and metadata matches for subject;
// entries present in both upgrade to match_type="both",
// confidence=1.0, and the result is sorted by confidence descending.
func (m *Manager) FindAllDuplicates(ctx context.Context, subject *store.Video) ([]DuplicateCandidate, error) {
	byHash, err := m.FindDuplicatesByHash(ctx, subject)
	if err != nil {
		return nil, err
	}
	byMeta, err := m.FindDuplicatesByMetadata(ctx, subject)
	if err != nil {
		return nil, err
	}

	merged := map[int64]DuplicateCandidate{}
	for _, c := range byHash {
		merged[c.VideoID] = c
	}
	for _, c := range byMeta {
		if existing, ok := merged[c.VideoID]; ok {
			existing.MatchType = "both"
			existing.Confidence = 1.0
			merged[c.VideoID] = existing
			continue
		}
		merged[c.VideoID] = c
	}

	out := make([]DuplicateCandidate, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out, nil
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
