// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package organizer builds the final on-disk paths for a video and
// its companion NFO sidecar from a path pattern (component H). It is
// a pure function: the only filesystem interaction is validating that
// the root directory exists, and its result is immutable.
package organizer

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/fuzzbin/fuzzbin/internal/ferrors"
	"github.com/fuzzbin/fuzzbin/internal/fsutil"
)

// Fields is the scalar metadata a pattern may reference. FeaturedArtists
// is the one list-valued field allowed in a pattern (joined with ", ");
// Tags is deliberately excluded from this struct since it is never a
// valid pattern field (it's a list with no defined join behavior here).
type Fields struct {
	Artist          string
	Title           string
	Album           string
	Genre           string
	Director        string
	Studio          string
	Year            *int
	IMVDBVideoID    string
	YouTubeID       string
	VimeoID         string
	FeaturedArtists []string
}

// fieldNames is the set of names build_media_paths accepts, matching
// Fields' public members lowercased to match pattern placeholder
// spelling. "tags" is intentionally absent: referencing it is always
// InvalidPattern.
var fieldNames = map[string]bool{
	"artist": true, "title": true, "album": true, "genre": true,
	"director": true, "studio": true, "year": true,
	"imvdb_video_id": true, "youtube_id": true, "vimeo_id": true,
	"featured_artists": true,
}

// MediaPaths is the immutable result of a successful resolution.
type MediaPaths struct {
	VideoPath string
	NFOPath   string
}

var placeholder = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// extractFields returns the set of {field} placeholder names in pattern.
func extractFields(pattern string) map[string]bool {
	out := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(pattern, -1) {
		out[m[1]] = true
	}
	return out
}

func validateFields(patternFields map[string]bool) error {
	var invalid []string
	for f := range patternFields {
		if f == "tags" {
			return ferrors.InvalidPattern("field %q is a list and cannot be used directly in a path pattern", f)
		}
		if !fieldNames[f] {
			invalid = append(invalid, f)
		}
	}
	if len(invalid) > 0 {
		return ferrors.InvalidPattern("unknown pattern field(s): %s", strings.Join(invalid, ", "))
	}
	return nil
}

func fieldValues(f Fields, patternFields map[string]bool) (map[string]string, error) {
	out := map[string]string{}
	for name := range patternFields {
		switch name {
		case "featured_artists":
			if len(f.FeaturedArtists) == 0 {
				return nil, ferrors.MissingField(name)
			}
			out[name] = strings.Join(f.FeaturedArtists, ", ")
		case "artist":
			v, err := required(name, f.Artist)
			if err != nil {
				return nil, err
			}
			out[name] = v
		case "title":
			v, err := required(name, f.Title)
			if err != nil {
				return nil, err
			}
			out[name] = v
		case "album":
			v, err := required(name, f.Album)
			if err != nil {
				return nil, err
			}
			out[name] = v
		case "genre":
			v, err := required(name, f.Genre)
			if err != nil {
				return nil, err
			}
			out[name] = v
		case "director":
			v, err := required(name, f.Director)
			if err != nil {
				return nil, err
			}
			out[name] = v
		case "studio":
			v, err := required(name, f.Studio)
			if err != nil {
				return nil, err
			}
			out[name] = v
		case "year":
			if f.Year == nil {
				return nil, ferrors.MissingField(name)
			}
			out[name] = strconv.Itoa(*f.Year)
		case "imvdb_video_id":
			v, err := required(name, f.IMVDBVideoID)
			if err != nil {
				return nil, err
			}
			out[name] = v
		case "youtube_id":
			v, err := required(name, f.YouTubeID)
			if err != nil {
				return nil, err
			}
			out[name] = v
		case "vimeo_id":
			v, err := required(name, f.VimeoID)
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
	}
	return out, nil
}

func required(field, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", ferrors.MissingField(field)
	}
	return value, nil
}

var nonAlnumSpace = regexp.MustCompile(`[^a-z0-9\s]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize applies the filesystem-safe normalization sequence (§4.H
// step 4): NFKD decomposition, strip combining marks, lowercase, drop
// hyphens, drop everything but ASCII alphanumerics and space, collapse
// whitespace runs to a single underscore, trim leading/trailing
// underscores.
func Normalize(s string) string {
	decomposed := norm.NFKD.String(s)
	var stripped strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		stripped.WriteRune(r)
	}
	out := strings.ToLower(stripped.String())
	out = strings.ReplaceAll(out, "-", "")
	out = nonAlnumSpace.ReplaceAllString(out, "")
	out = whitespaceRun.ReplaceAllString(out, "_")
	return strings.Trim(out, "_")
}

func substitute(pattern string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(pattern, func(m string) string {
		name := m[1 : len(m)-1]
		return values[name]
	})
}

// BuildMediaPaths resolves pattern against fields rooted at root,
// producing the final video and NFO paths. root must already exist
// and be a directory; this function never creates or moves anything.
func BuildMediaPaths(root, pattern string, fields Fields, normalize bool) (MediaPaths, error) {
	info, err := os.Stat(root)
	if err != nil {
		return MediaPaths{}, ferrors.InvalidPath("root path does not exist: %s", root)
	}
	if !info.IsDir() {
		return MediaPaths{}, ferrors.InvalidPath("root path is not a directory: %s", root)
	}

	patternFields := extractFields(pattern)
	if err := validateFields(patternFields); err != nil {
		return MediaPaths{}, err
	}

	values, err := fieldValues(fields, patternFields)
	if err != nil {
		return MediaPaths{}, err
	}

	if normalize {
		for k, v := range values {
			values[k] = Normalize(v)
		}
	}

	relative := substitute(pattern, values)

	// Unnormalized metadata (artist/title straight from a source) could
	// contain "../" segments; confine the resolved path to root rather
	// than trusting substitution alone.
	videoPath, err := fsutil.ConfineRelPath(root, relative+".mp4")
	if err != nil {
		return MediaPaths{}, ferrors.InvalidPath("pattern resolves outside library root: %v", err)
	}
	nfoPath, err := fsutil.ConfineRelPath(root, relative+".nfo")
	if err != nil {
		return MediaPaths{}, ferrors.InvalidPath("pattern resolves outside library root: %v", err)
	}

	return MediaPaths{VideoPath: videoPath, NFOPath: nfoPath}, nil
}
