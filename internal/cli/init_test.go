package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureGitignore(t *testing.T) {
	t.Run("creates when absent", func(t *testing.T) {
		dir := t.TempDir()
		status, err := ensureGitignore(dir)
		if err != nil {
			t.Fatalf("ensureGitignore: %v", err)
		}
		if status != "created" {
			t.Errorf("status = %q, want %q", status, "created")
		}
		data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			t.Fatalf("read .gitignore: %v", err)
		}
		for _, entry := range []string{".mimir/", ".trash/"} {
			if !strings.Contains(string(data), entry) {
				t.Errorf(".gitignore missing %q:\n%s", entry, data)
			}
		}
	})

	t.Run("appends missing entries", func(t *testing.T) {
		dir := t.TempDir()
		existing := "node_modules/\n.trash/\n"
		if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(existing), 0o644); err != nil {
			t.Fatal(err)
		}
		status, err := ensureGitignore(dir)
		if err != nil {
			t.Fatalf("ensureGitignore: %v", err)
		}
		if status != "updated" {
			t.Errorf("status = %q, want %q", status, "updated")
		}
		data, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
		content := string(data)
		if !strings.Contains(content, "node_modules/") {
			t.Error("existing entries were lost")
		}
		if !strings.Contains(content, ".mimir/") {
			t.Error(".mimir/ not appended")
		}
		if strings.Count(content, ".trash/") != 1 {
			t.Errorf(".trash/ duplicated:\n%s", content)
		}
	})

	t.Run("leaves complete file alone", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".mimir/\n.trash/\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		status, err := ensureGitignore(dir)
		if err != nil {
			t.Fatalf("ensureGitignore: %v", err)
		}
		if status != "unchanged" {
			t.Errorf("status = %q, want %q", status, "unchanged")
		}
	})
}
