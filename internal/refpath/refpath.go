// Package refpath provides canonical helpers for reference paths: the
// slash-delimited logical identifiers (e.g. "cs/ai_books/sutton_barto")
// that double as directory paths under a store root.
//
// Centralizing normalization, validation, and segment sanitization here keeps
// the store, importer, and CLI agreeing on what a path means.
package refpath

import (
	"fmt"
	"path/filepath"
	"strings"

	goslug "github.com/gosimple/slug"
)

// Normalize converts OS separators to '/', trims leading "./" and
// surrounding slashes, and collapses repeated '/'.
func Normalize(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// Validate reports whether p is usable as a reference path: non-empty,
// relative, and free of "." / ".." segments.
func Validate(p string) error {
	p = filepath.ToSlash(p)
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("empty reference path")
	}
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return fmt.Errorf("reference path must be relative: %s", p)
	}
	for _, seg := range strings.Split(Normalize(p), "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("reference path must not contain %q: %s", seg, p)
		}
		if strings.HasPrefix(seg, ".") {
			return fmt.Errorf("reference path segments must not be hidden: %s", p)
		}
	}
	return nil
}

// SanitizeSegment converts one path segment to a filesystem-safe form.
// Underscores and hyphens survive; everything else goes through slugging.
func SanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return ""
	}
	s := goslug.Make(seg)
	if s == "" {
		s = strings.ToLower(strings.ReplaceAll(seg, " ", "-"))
	}
	return s
}

// Sanitize normalizes p and sanitizes every segment. Empty segments are
// dropped.
func Sanitize(p string) string {
	parts := strings.Split(Normalize(p), "/")
	out := make([]string, 0, len(parts))
	for _, seg := range parts {
		if s := SanitizeSegment(seg); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}

// Join joins already-normalized segments into one reference path, skipping
// empties.
func Join(segments ...string) string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg = Normalize(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/")
}
