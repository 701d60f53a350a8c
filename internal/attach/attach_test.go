package attach

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseMode(t *testing.T) {
	for s, want := range map[string]Mode{"ln": ModeLink, "cp": ModeCopy, "mv": ModeMove, "COPY": ModeCopy} {
		got, err := ParseMode(s)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseMode("teleport"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPlaceCopy(t *testing.T) {
	srcDir, destDir := t.TempDir(), t.TempDir()
	src := writeTemp(t, srcDir, "paper.pdf", "content")

	placed, failures := Place([]string{src}, destDir, ModeCopy)
	if len(failures) != 0 {
		t.Fatalf("failures: %v", failures)
	}
	if len(placed) != 1 || placed[0].Name != "paper.pdf" {
		t.Fatalf("placed = %+v", placed)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "paper.pdf"))
	if err != nil || string(data) != "content" {
		t.Errorf("copy mismatch: %q %v", data, err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("copy must not remove the source")
	}
}

func TestPlaceLinkSharesInode(t *testing.T) {
	dir := t.TempDir()
	destDir := filepath.Join(dir, "ref")
	if err := os.Mkdir(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	src := writeTemp(t, dir, "a.pdf", "x")

	placed, failures := Place([]string{src}, destDir, ModeLink)
	if len(failures) != 0 {
		t.Fatalf("failures: %v", failures)
	}
	if placed[0].CrossDevice {
		t.Error("same-filesystem link should not report a cross-device fallback")
	}

	srcInfo, _ := os.Stat(src)
	dstInfo, _ := os.Stat(filepath.Join(destDir, "a.pdf"))
	if !os.SameFile(srcInfo, dstInfo) {
		t.Error("link mode should produce the same inode")
	}
}

func TestPlaceMove(t *testing.T) {
	srcDir, destDir := t.TempDir(), t.TempDir()
	src := writeTemp(t, srcDir, "b.pdf", "x")

	_, failures := Place([]string{src}, destDir, ModeMove)
	if len(failures) != 0 {
		t.Fatalf("failures: %v", failures)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("move should remove the source")
	}
	if _, err := os.Stat(filepath.Join(destDir, "b.pdf")); err != nil {
		t.Error("move should create the destination")
	}
}

func TestPlaceCollision(t *testing.T) {
	srcDir, destDir := t.TempDir(), t.TempDir()
	first := writeTemp(t, srcDir, "paper.pdf", "first")
	other := filepath.Join(srcDir, "sub")
	if err := os.Mkdir(other, 0o755); err != nil {
		t.Fatal(err)
	}
	second := writeTemp(t, other, "paper.pdf", "second")

	placed, failures := Place([]string{first, second}, destDir, ModeCopy)
	if len(failures) != 0 {
		t.Fatalf("failures: %v", failures)
	}
	if placed[0].Name != "paper.pdf" || placed[1].Name != "paper_1.pdf" {
		t.Fatalf("collision not disambiguated: %+v", placed)
	}

	a, _ := os.ReadFile(filepath.Join(destDir, "paper.pdf"))
	b, _ := os.ReadFile(filepath.Join(destDir, "paper_1.pdf"))
	if string(a) != "first" || string(b) != "second" {
		t.Errorf("both attachments must survive intact: %q %q", a, b)
	}
}

func TestPlacePartialFailure(t *testing.T) {
	srcDir, destDir := t.TempDir(), t.TempDir()
	good := writeTemp(t, srcDir, "good.pdf", "x")
	missing := filepath.Join(srcDir, "missing.pdf")

	placed, failures := Place([]string{missing, good}, destDir, ModeCopy)
	if len(placed) != 1 || placed[0].Name != "good.pdf" {
		t.Errorf("good file should still be placed: %+v", placed)
	}
	if len(failures) != 1 || failures[0].Source != missing {
		t.Errorf("missing file should be reported, not fatal: %+v", failures)
	}
}

func TestLatestIn(t *testing.T) {
	dir := t.TempDir()
	old := writeTemp(t, dir, "old.pdf", "x")
	newer := writeTemp(t, dir, "new.pdf", "y")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	got, err := LatestIn(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != newer {
		t.Errorf("LatestIn = %q, want %q", got, newer)
	}

	if _, err := LatestIn(t.TempDir()); err == nil {
		t.Error("expected error for empty watch directory")
	}
}
