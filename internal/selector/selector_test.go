package selector

import (
	"errors"
	"testing"
)

func compile(t *testing.T, patterns ...string) *Selector {
	t.Helper()
	s, err := Compile(patterns)
	if err != nil {
		t.Fatalf("Compile(%v): %v", patterns, err)
	}
	return s
}

func TestMatchAnchoredDirectChildren(t *testing.T) {
	s := compile(t, "/.exports/*")

	if !s.Match("/.exports/all_refs.bib") {
		t.Error("direct child of .exports should be included")
	}
	if s.Match("/.exports/sub/x.bib") {
		t.Error("pattern anchors to direct children only")
	}
	if s.Match("/other/.exports/x.bib") {
		t.Error("leading slash anchors to store root")
	}
}

func TestMatchNegation(t *testing.T) {
	s := compile(t, "/cs/*", "!/cs/secret")

	if !s.Match("/cs/x") {
		t.Error("cs/x should be included")
	}
	if s.Match("/cs/secret") {
		t.Error("!/cs/secret should force exclusion")
	}
	if s.Match("/math/y") {
		t.Error("unmatched paths are excluded by default")
	}
}

func TestMatchOrderDependence(t *testing.T) {
	// Later patterns override earlier verdicts for overlapping matches.
	s := compile(t, "/cs/**", "!/cs/private/**", "/cs/private/shared")

	if !s.Match("cs/ai_books/sutton_barto") {
		t.Error("cs subtree included")
	}
	if s.Match("cs/private/keys") {
		t.Error("private subtree re-excluded")
	}
	if !s.Match("cs/private/shared") {
		t.Error("later pattern re-includes one private path")
	}
}

func TestMatchUnanchored(t *testing.T) {
	s := compile(t, "drafts")

	for _, p := range []string{"drafts", "cs/drafts", "a/b/drafts"} {
		if !s.Match(p) {
			t.Errorf("bare pattern should match %q at any depth", p)
		}
	}
	if s.Match("cs/drafts2") {
		t.Error("bare pattern is not a prefix match")
	}
}

func TestMatchDoubleStarDepth(t *testing.T) {
	s := compile(t, "/cs/**/notes")

	if !s.Match("cs/a/b/notes") {
		t.Error("** should cross directories")
	}
	if s.Match("cs/a/b/notes/deep") {
		t.Error("pattern does not descend past its last segment")
	}

	single := compile(t, "/cs/*")
	if single.Match("cs/a/b") {
		t.Error("* must not cross a path separator")
	}
}

func TestMatchDirectoryPattern(t *testing.T) {
	s := compile(t, "/cs/")

	if !s.Match("cs") || !s.Match("cs/ai_books/sutton_barto") {
		t.Error("trailing slash selects the directory and its subtree")
	}
	if s.Match("csx") {
		t.Error("directory pattern must not match sibling prefixes")
	}
}

func TestCompileSkipsCommentsAndBlanks(t *testing.T) {
	s := compile(t, "# exports everything under cs", "", "/cs/**")
	if !s.Match("cs/x") {
		t.Error("real pattern after comment/blank should apply")
	}
}

func TestCompilePatternError(t *testing.T) {
	_, err := Compile([]string{"/cs/[unclosed"})
	var perr *PatternError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PatternError, got %v", err)
	}
	if perr.Pattern != "/cs/[unclosed" || perr.Index != 0 {
		t.Errorf("unexpected error detail: %+v", perr)
	}
}
