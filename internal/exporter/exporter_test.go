package exporter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/config"
	"github.com/skjoldr/mimir/internal/selector"
	"github.com/skjoldr/mimir/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func record(key string) bibtex.Record {
	return bibtex.Record{Type: "article", Key: key, Fields: []bibtex.Field{
		{Name: "title", Value: "Title of " + key},
	}}
}

func TestRunFiltersBySelector(t *testing.T) {
	st := newStore(t)
	if err := st.Write("cs/x", []bibtex.Record{record("csx")}); err != nil {
		t.Fatal(err)
	}
	if err := st.Write("math/y", []bibtex.Record{record("mathy")}); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "out", "cs.bib")
	res, err := Run(st, "cs_only", config.ExportSpec{
		Source:      []string{"/cs/*"},
		Destination: dest,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 {
		t.Errorf("Count = %d, want 1", res.Count)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "csx") || strings.Contains(string(data), "mathy") {
		t.Errorf("destination should contain only the cs record:\n%s", data)
	}
}

func TestRunIsDeterministicAndOverwrites(t *testing.T) {
	st := newStore(t)
	for _, ref := range []string{"cs/b", "cs/a", "math/z"} {
		if err := st.Write(ref, []bibtex.Record{record(strings.ReplaceAll(ref, "/", "_"))}); err != nil {
			t.Fatal(err)
		}
	}

	dest := filepath.Join(t.TempDir(), "all.bib")
	spec := config.ExportSpec{Source: []string{"/**"}, Destination: dest}

	if _, err := Run(st, "all", spec); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(dest)

	if _, err := Run(st, "all", spec); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(dest)

	if string(first) != string(second) {
		t.Error("reruns with unchanged store must produce byte-identical output")
	}

	// Lexicographic store order shows in the output.
	a := strings.Index(string(first), "cs_a")
	b := strings.Index(string(first), "cs_b")
	z := strings.Index(string(first), "math_z")
	if !(a < b && b < z) {
		t.Errorf("output order not lexicographic: %d %d %d", a, b, z)
	}
}

func TestRunSkipsCorruptRecordsWithWarning(t *testing.T) {
	st := newStore(t)
	if err := st.Write("cs/good", []bibtex.Record{record("good")}); err != nil {
		t.Fatal(err)
	}
	if err := st.WriteRaw("cs/bad", []byte("@article{broken,\n  title = {unbalanced{\n}\n")); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "out.bib")
	res, err := Run(st, "all", config.ExportSpec{Source: []string{"/**"}, Destination: dest})
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 {
		t.Errorf("Count = %d, want 1", res.Count)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Ref != "cs/bad" {
		t.Errorf("Warnings = %+v", res.Warnings)
	}

	data, _ := os.ReadFile(dest)
	if !strings.Contains(string(data), "good") {
		t.Error("good record should still be exported")
	}
}

func TestRunPatternErrorIsFatalToItsSpecOnly(t *testing.T) {
	st := newStore(t)
	if err := st.Write("cs/x", []bibtex.Record{record("x")}); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	specs := map[string]config.ExportSpec{
		"bad":  {Source: []string{"/cs/[oops"}, Destination: filepath.Join(dir, "bad.bib")},
		"good": {Source: []string{"/cs/**"}, Destination: filepath.Join(dir, "good.bib")},
	}

	results, failed := RunAll(st, specs)
	if len(results) != 1 || results[0].Name != "good" {
		t.Errorf("results = %+v", results)
	}
	var perr *selector.PatternError
	if !errors.As(failed["bad"], &perr) {
		t.Errorf("expected PatternError for bad spec, got %v", failed["bad"])
	}
	if _, err := os.Stat(filepath.Join(dir, "good.bib")); err != nil {
		t.Error("good spec should still run when a sibling spec fails")
	}
}
