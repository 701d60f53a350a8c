// Package editor launches the user's text editor and waits for it
// to exit, so edited content can be read back afterwards.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Open runs the editor on path and blocks until it exits. The editor
// string may be a compound command like "code --wait"; in that case it
// is run through the shell.
func Open(editor, path string) error {
	if editor == "" {
		return fmt.Errorf("no editor configured (set 'editor' in config or $EDITOR)")
	}

	var cmd *exec.Cmd
	if strings.Contains(editor, " ") {
		cmd = exec.Command("sh", "-c", editor+" "+shellQuote(path))
	} else {
		cmd = exec.Command(editor, path)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q: %w", editor, err)
	}
	return nil
}

// Compose writes template to a temporary file, opens it in the editor,
// and returns the edited contents once the editor exits.
func Compose(editor, template string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "mmr-edit-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "reference.bib")
	if err := os.WriteFile(path, []byte(template), 0o600); err != nil {
		return nil, err
	}
	if err := Open(editor, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}
