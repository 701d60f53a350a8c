// Package attach materializes attachment files into reference directories
// under link, copy, or move semantics.
package attach

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Mode is the transfer semantics for one placement operation. It is a
// per-operation parameter, never persisted per file.
type Mode int

const (
	// ModeLink hardlinks the source, falling back to a copy when source and
	// destination live on different filesystems.
	ModeLink Mode = iota
	// ModeCopy duplicates the source byte-for-byte.
	ModeCopy
	// ModeMove relocates the source, removing the original.
	ModeMove
)

// ParseMode parses the mode flags accepted on the command line.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ln", "link":
		return ModeLink, nil
	case "cp", "copy":
		return ModeCopy, nil
	case "mv", "move":
		return ModeMove, nil
	default:
		return 0, fmt.Errorf("invalid transfer mode %q (want ln, cp, or mv)", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeLink:
		return "ln"
	case ModeCopy:
		return "cp"
	case ModeMove:
		return "mv"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Placement records one successfully placed attachment.
type Placement struct {
	// Source is the original file path.
	Source string
	// Name is the base name the file got inside the destination directory
	// (disambiguated on collision).
	Name string
	// CrossDevice is set when a requested hard link degraded to a copy
	// because source and destination are on different filesystems.
	CrossDevice bool
}

// Failure records one placement that could not be completed.
type Failure struct {
	Source string
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("attach %s: %v", f.Source, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Place materializes each source file into destDir under the given mode.
//
// A file whose base name already exists in destDir gets a numeric suffix
// before the extension (paper.pdf -> paper_1.pdf); attachments are never
// silently overwritten. Failure of one source does not abort the rest: the
// caller receives the successful placements plus per-file failures.
func Place(sources []string, destDir string, mode Mode) ([]Placement, []Failure) {
	var placed []Placement
	var failures []Failure

	for _, src := range sources {
		p, err := placeOne(src, destDir, mode)
		if err != nil {
			failures = append(failures, Failure{Source: src, Err: err})
			continue
		}
		placed = append(placed, p)
	}
	return placed, failures
}

func placeOne(src, destDir string, mode Mode) (Placement, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Placement{}, err
	}
	if info.IsDir() {
		return Placement{}, fmt.Errorf("is a directory")
	}

	name := disambiguate(destDir, filepath.Base(src))
	dest := filepath.Join(destDir, name)
	out := Placement{Source: src, Name: name}

	switch mode {
	case ModeLink:
		err := os.Link(src, dest)
		if isCrossDevice(err) {
			out.CrossDevice = true
			err = copyFile(src, dest, info.Mode())
		}
		if err != nil {
			return Placement{}, err
		}
	case ModeCopy:
		if err := copyFile(src, dest, info.Mode()); err != nil {
			return Placement{}, err
		}
	case ModeMove:
		err := os.Rename(src, dest)
		if isCrossDevice(err) {
			if err = copyFile(src, dest, info.Mode()); err == nil {
				err = os.Remove(src)
			}
		}
		if err != nil {
			return Placement{}, err
		}
	default:
		return Placement{}, fmt.Errorf("invalid transfer mode %v", mode)
	}
	return out, nil
}

// disambiguate returns base, or base with "_N" inserted before the extension
// when base (and successive candidates) already exist in dir.
func disambiguate(dir, base string) string {
	candidate := base
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		if _, err := os.Lstat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
}

func isCrossDevice(err error) bool {
	return err != nil && errors.Is(err, syscall.EXDEV)
}

func copyFile(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}

// LatestIn returns the most recently modified regular file in dir. It backs
// the "attach whatever just landed in the watch directory" shortcut.
func LatestIn(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read watch directory: %w", err)
	}

	var latest string
	var latestMod int64
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = e.Name()
			latestMod = mod
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no files found in watch directory: %s", dir)
	}
	return filepath.Join(dir, latest), nil
}
