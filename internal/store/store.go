// Package store implements the path-addressed reference store: a directory
// tree where each reference path maps to a directory holding exactly one
// record file plus zero or more attachments.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skjoldr/mimir/internal/atomicfile"
	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/refpath"
)

const (
	// RecordFileName is the fixed name of the record file inside every
	// reference directory.
	RecordFileName = "reference.bib"

	// MetaDirName holds store-local metadata (index, export specs).
	MetaDirName = ".mimir"

	// TrashDirName receives trashed reference directories.
	TrashDirName = ".trash"
)

var (
	// ErrNotFound indicates no reference exists at the path.
	ErrNotFound = errors.New("reference not found")
	// ErrExists indicates creation was attempted at an occupied path.
	ErrExists = errors.New("reference already exists")
)

// Store is a reference store rooted at one absolute directory.
type Store struct {
	root string
}

// Open opens an existing store root. The directory must exist.
func Open(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store: root is not a directory: %s", abs)
	}
	return &Store{root: abs}, nil
}

// Init creates a store root (with its metadata directory) and opens it.
func Init(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, MetaDirName), 0o755); err != nil {
		return nil, fmt.Errorf("store: init %s: %w", abs, err)
	}
	return Open(abs)
}

// Root returns the absolute store root.
func (s *Store) Root() string { return s.root }

// MetaDir returns the absolute path of the store metadata directory.
func (s *Store) MetaDir() string { return filepath.Join(s.root, MetaDirName) }

// Dir resolves a reference path to its absolute directory, rejecting paths
// that are invalid or escape the root. Validation runs on the raw input:
// normalizing first would strip the leading slash that marks an absolute
// path as invalid.
func (s *Store) Dir(ref string) (string, error) {
	if err := refpath.Validate(ref); err != nil {
		return "", err
	}
	ref = refpath.Normalize(ref)
	abs := filepath.Join(s.root, filepath.FromSlash(ref))
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("store: path escapes root: %s", ref)
	}
	return abs, nil
}

// recordPath resolves a reference path to its record file.
func (s *Store) recordPath(ref string) (string, error) {
	dir, err := s.Dir(ref)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, RecordFileName), nil
}

// Exists reports whether a reference (a directory with a record file) exists
// at the path.
func (s *Store) Exists(ref string) bool {
	path, err := s.recordPath(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ReadRaw returns the raw record file bytes at ref.
func (s *Store) ReadRaw(ref string) ([]byte, error) {
	path, err := s.recordPath(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("store: read %s: %w", ref, err)
	}
	return data, nil
}

// Read parses the record file at ref.
func (s *Store) Read(ref string) ([]bibtex.Record, error) {
	data, err := s.ReadRaw(ref)
	if err != nil {
		return nil, err
	}
	records, err := bibtex.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", ref, err)
	}
	return records, nil
}

// EnsureDir creates the reference directory (without a record file) so
// attachments can be placed before the record is written.
func (s *Store) EnsureDir(ref string) (string, error) {
	dir, err := s.Dir(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("store: create %s: %w", ref, err)
	}
	return dir, nil
}

// Write serializes records and atomically replaces the record file at ref,
// creating the reference directory if absent.
func (s *Store) Write(ref string, records []bibtex.Record) error {
	if _, err := s.EnsureDir(ref); err != nil {
		return err
	}
	path, err := s.recordPath(ref)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(path, []byte(bibtex.Serialize(records)), 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", ref, err)
	}
	return nil
}

// WriteRaw atomically replaces the record file at ref with raw text,
// creating the reference directory if absent. Used when user-authored
// record text should be preserved byte-for-byte.
func (s *Store) WriteRaw(ref string, data []byte) error {
	if _, err := s.EnsureDir(ref); err != nil {
		return err
	}
	path, err := s.recordPath(ref)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", ref, err)
	}
	return nil
}

// Walk visits every reference at or below prefix in lexicographic order.
// Directories without a record file are organizational and skipped silently;
// hidden directories (metadata, trash) are never descended into.
func (s *Store) Walk(prefix string, fn func(ref string) error) error {
	base := s.root
	if prefix = refpath.Normalize(prefix); prefix != "" {
		dir, err := s.Dir(prefix)
		if err != nil {
			return err
		}
		base = dir
	}

	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == base {
				return nil
			}
			return fmt.Errorf("store: walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != base {
			return filepath.SkipDir
		}
		if _, statErr := os.Stat(filepath.Join(path, RecordFileName)); statErr != nil {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		return fn(filepath.ToSlash(rel))
	})
}

// List returns all reference paths at or below prefix, sorted.
func (s *Store) List(prefix string) ([]string, error) {
	var refs []string
	err := s.Walk(prefix, func(ref string) error {
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// Attachments returns the base names of attachment files in ref's directory
// (everything except the record file), sorted.
func (s *Store) Attachments(ref string) ([]string, error) {
	dir, err := s.Dir(ref)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("store: read %s: %w", ref, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == RecordFileName {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Trash moves the reference directory (record and attachments) into the
// store's trash directory. It returns the new location. A name collision in
// the trash gets a timestamp suffix.
func (s *Store) Trash(ref string) (string, error) {
	dir, err := s.Dir(ref)
	if err != nil {
		return "", err
	}
	if !s.Exists(ref) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	trashDir := filepath.Join(s.root, TrashDirName)
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return "", fmt.Errorf("store: create trash: %w", err)
	}

	dest := filepath.Join(trashDir, strings.ReplaceAll(refpath.Normalize(ref), "/", "__"))
	if _, err := os.Stat(dest); err == nil {
		dest = fmt.Sprintf("%s-%d", dest, time.Now().Unix())
	}
	if err := os.Rename(dir, dest); err != nil {
		return "", fmt.Errorf("store: trash %s: %w", ref, err)
	}
	return dest, nil
}

// Remove permanently deletes the reference directory and everything in it.
func (s *Store) Remove(ref string) error {
	dir, err := s.Dir(ref)
	if err != nil {
		return err
	}
	if !s.Exists(ref) {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("store: remove %s: %w", ref, err)
	}
	return nil
}
