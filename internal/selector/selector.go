// Package selector compiles ordered include/exclude pattern lists into a
// predicate over store-relative paths.
//
// Semantics mirror a gitignore file read in whitelist orientation: a path is
// excluded unless some pattern matches it, patterns are evaluated in listed
// order with the last match winning, and a '!'-prefixed pattern flips the
// verdict back to exclude. Matching is a pure function of (patterns, path),
// with no filesystem access.
package selector

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// PatternError reports a pattern that failed to compile. It is fatal to the
// export specification that declared the pattern, but not to other specs in
// the same run.
type PatternError struct {
	Pattern string
	Index   int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q (pattern %d): %v", e.Pattern, e.Index+1, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

type rule struct {
	negate bool
	g      glob.Glob
}

// Selector is a compiled pattern list.
type Selector struct {
	rules []rule
}

// Compile builds a Selector from an ordered pattern list. Blank lines and
// '#' comments are skipped, matching ignore-file conventions.
//
// A pattern containing a '/' (other than a trailing one) is anchored at the
// store root; a bare pattern matches at any depth. '*' never crosses a path
// separator; '**' does. A trailing '/' selects the directory and everything
// under it.
func Compile(patterns []string) (*Selector, error) {
	s := &Selector{}
	for i, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}

		negate := false
		if strings.HasPrefix(p, "!") {
			negate = true
			p = p[1:]
		}

		dirOnly := strings.HasSuffix(p, "/")
		p = strings.TrimSuffix(p, "/")

		anchored := strings.HasPrefix(p, "/") || strings.Contains(p, "/")
		p = strings.TrimPrefix(p, "/")
		if p == "" {
			return nil, &PatternError{Pattern: raw, Index: i, Err: fmt.Errorf("empty pattern")}
		}

		exprs := []string{p}
		if !anchored {
			// A bare pattern matches at any depth, including the root.
			exprs = append(exprs, "**/"+p)
		}
		if dirOnly {
			// The directory itself plus anything beneath it.
			for _, e := range exprs[:len(exprs):len(exprs)] {
				exprs = append(exprs, e+"/**")
			}
		}
		for _, expr := range exprs {
			g, err := glob.Compile(expr, '/')
			if err != nil {
				return nil, &PatternError{Pattern: raw, Index: i, Err: err}
			}
			s.rules = append(s.rules, rule{negate: negate, g: g})
		}
	}
	return s, nil
}

// Match reports whether path is selected. Leading slashes and OS separators
// in path are normalized before matching.
func (s *Selector) Match(path string) bool {
	path = strings.Trim(strings.ReplaceAll(path, "\\", "/"), "/")

	include := false
	for _, r := range s.rules {
		if r.g.Match(path) {
			include = !r.negate
		}
	}
	return include
}
