// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"regexp"
	"strings"
)

// featuredPattern matches trailing "ft.", "feat.", "featuring", "f/"
// notation, mirroring the dedup behavior the original library used
// for artist-name matching (string_utils.remove_featured_artists).
var featuredPattern = regexp.MustCompile(`(?i)(?:^|\s+)(?:ft\.?|feat\.?|featuring|f/)(?:\s+.*)?$`)

// normalizeName produces the dedup key stored in normalized_name
// columns: lowercase, trimmed, with any featured-artist suffix
// stripped so "Artist feat. Other" and "Artist" collide intentionally.
func normalizeName(s string) string {
	s = featuredPattern.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}
