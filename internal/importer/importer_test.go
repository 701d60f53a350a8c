package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/skjoldr/mimir/internal/attach"
	"github.com/skjoldr/mimir/internal/bibtex"
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

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("pdf bytes of "+name), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportEndToEnd(t *testing.T) {
	st := newStore(t)
	srcDir := t.TempDir()
	a := writeSource(t, srcDir, "a.pdf")
	b := writeSource(t, srcDir, "b.pdf")

	bulk := fmt.Sprintf(`@book{sutton_barto,
  author = {Sutton, Richard S. and Barto, Andrew G.},
  title = {Reinforcement Learning},
  collection = {cs/ai_books},
  file = {%s;%s}
}
`, a, b)

	summary, err := Run(st, []byte(bulk), Options{Mode: attach.ModeLink})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Created != 1 || summary.Merged != 0 {
		t.Errorf("summary = %+v", summary)
	}

	entry := summary.Entries[0]
	if entry.Ref != "cs/ai_books" {
		t.Fatalf("ref = %q", entry.Ref)
	}
	if len(entry.Placements) != 2 || len(entry.Failures) != 0 {
		t.Fatalf("placements = %+v failures = %+v", entry.Placements, entry.Failures)
	}

	// Collection and file fields are stripped before persisting.
	records, err := st.Read("cs/ai_books")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := records[0].Get("collection"); ok {
		t.Error("collection field must be stripped")
	}
	if _, ok := records[0].Get("file"); ok {
		t.Error("file field must be stripped")
	}
	if v, _ := records[0].Get("title"); v != "Reinforcement Learning" {
		t.Errorf("title = %q", v)
	}

	// Link mode hardlinks to the originals.
	dir, _ := st.Dir("cs/ai_books")
	srcInfo, _ := os.Stat(a)
	dstInfo, err := os.Stat(filepath.Join(dir, "a.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(srcInfo, dstInfo) {
		t.Error("ln mode should hard link attachments")
	}
}

func TestImportNumberedCollectionFields(t *testing.T) {
	st := newStore(t)
	bulk := `@article{k,
  collection2 = {deep},
  collection = {cs},
  collection1 = {ai_books},
  title = {T}
}
`
	summary, err := Run(st, []byte(bulk), Options{Mode: attach.ModeCopy})
	if err != nil {
		t.Fatal(err)
	}
	if got := summary.Entries[0].Ref; got != "cs/ai_books/deep" {
		t.Errorf("numbered collections should join in numeric order, got %q", got)
	}
}

func TestImportMergePreservesManualFields(t *testing.T) {
	st := newStore(t)
	existing := bibtex.Record{Type: "article", Key: "k", Fields: []bibtex.Field{
		{Name: "title", Value: "Old"},
		{Name: "note", Value: "hand-written"},
	}}
	if err := st.Write("cs/x", []bibtex.Record{existing}); err != nil {
		t.Fatal(err)
	}

	bulk := "@article{k,\n  collection = {cs/x},\n  title = {New}\n}\n"
	summary, err := Run(st, []byte(bulk), Options{Mode: attach.ModeCopy})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Merged != 1 {
		t.Errorf("summary = %+v", summary)
	}

	records, _ := st.Read("cs/x")
	if v, _ := records[0].Get("title"); v != "New" {
		t.Errorf("imported value should win: title = %q", v)
	}
	if v, ok := records[0].Get("note"); !ok || v != "hand-written" {
		t.Errorf("manually added field should survive: %q %v", v, ok)
	}
}

func TestImportIdempotentWithDisambiguatedDuplicates(t *testing.T) {
	st := newStore(t)
	src := writeSource(t, t.TempDir(), "paper.pdf")
	bulk := fmt.Sprintf("@article{k,\n  collection = {cs/x},\n  title = {T},\n  file = {%s}\n}\n", src)

	for i := 0; i < 2; i++ {
		if _, err := Run(st, []byte(bulk), Options{Mode: attach.ModeCopy}); err != nil {
			t.Fatal(err)
		}
	}

	first, _ := st.Read("cs/x")
	if _, err := Run(st, []byte(bulk), Options{Mode: attach.ModeCopy}); err != nil {
		t.Fatal(err)
	}
	second, _ := st.Read("cs/x")
	if !bibtex.Equal(first[0], second[0]) {
		t.Errorf("re-import should be idempotent for the record:\n%+v\n%+v", first[0], second[0])
	}

	names, _ := st.Attachments("cs/x")
	want := map[string]bool{"paper.pdf": true, "paper_1.pdf": true, "paper_2.pdf": true}
	if len(names) != 3 {
		t.Fatalf("attachments = %v, want disambiguated duplicates", names)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected attachment name %q", n)
		}
	}
}

func TestImportAttachmentFailureDoesNotBlockRecord(t *testing.T) {
	st := newStore(t)
	bulk := "@article{k,\n  collection = {cs/x},\n  title = {T},\n  file = {/nope/missing.pdf}\n}\n"

	summary, err := Run(st, []byte(bulk), Options{Mode: attach.ModeCopy})
	if err != nil {
		t.Fatal(err)
	}
	if summary.AttachmentFailures() != 1 {
		t.Errorf("expected one attachment failure: %+v", summary.Entries)
	}
	if !st.Exists("cs/x") {
		t.Error("record must still be written when attachments fail")
	}
}

func TestImportAbortsOnMalformedFile(t *testing.T) {
	st := newStore(t)
	bulk := `@article{good,
  collection = {cs/good},
  title = {Fine}
}
@article{bad,
  title = {unbalanced {brace}
}
`
	_, err := Run(st, []byte(bulk), Options{Mode: attach.ModeCopy})
	var malformed *bibtex.MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedError, got %v", err)
	}
	if st.Exists("cs/good") {
		t.Error("a parse failure must abort the whole import before any write")
	}
}

func TestImportFallbackPath(t *testing.T) {
	st := newStore(t)
	bulk := `@book{knuth1997,
  author = {Knuth, Donald E.},
  year = {1997},
  title = {TAOCP}
}
@misc{nobody,
  title = {Unattributed}
}
`
	summary, err := Run(st, []byte(bulk), Options{Mode: attach.ModeCopy})
	if err != nil {
		t.Fatal(err)
	}
	if got := summary.Entries[0].Ref; got != "imported/knuth_1997" {
		t.Errorf("author/year fallback: got %q", got)
	}
	if got := summary.Entries[1].Ref; got != "imported/nobody" {
		t.Errorf("key fallback: got %q", got)
	}
}

func TestImportDryRun(t *testing.T) {
	st := newStore(t)
	bulk := "@article{k,\n  collection = {cs/x},\n  title = {T},\n  file = {/tmp/a.pdf;/tmp/b.pdf}\n}\n"

	summary, err := Run(st, []byte(bulk), Options{Mode: attach.ModeCopy, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	entry := summary.Entries[0]
	if entry.Action != ActionPlanned || entry.Ref != "cs/x" || len(entry.Placements) != 2 {
		t.Errorf("entry = %+v", entry)
	}
	if st.Exists("cs/x") {
		t.Error("dry run must not write to the store")
	}
}
