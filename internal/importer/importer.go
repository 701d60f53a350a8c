// Package importer implements the bulk import/merge engine: it converts an
// externally produced bibliography file, whose entries are annotated with
// collection path and attachment list fields, into the path-addressed store.
package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skjoldr/mimir/internal/attach"
	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/refpath"
	"github.com/skjoldr/mimir/internal/store"
)

// Fields with import-time meaning. They are stripped before a record is
// persisted: attachment state lives only in the reference directory itself.
const (
	collectionField = "collection"
	fileField       = "file"
)

// fallbackPrefix receives entries that carry no collection path.
const fallbackPrefix = "imported"

// Options configures one import run.
type Options struct {
	// Mode is the attachment transfer mode for this run.
	Mode attach.Mode

	// DryRun computes destination paths without touching the store.
	DryRun bool
}

// Action describes what happened to one entry.
type Action string

const (
	ActionCreated Action = "created"
	ActionMerged  Action = "merged"
	ActionPlanned Action = "planned"
)

// EntryResult is the outcome for one bulk-file entry.
type EntryResult struct {
	Key    string
	Ref    string
	Action Action

	// Placements are the attachments that were materialized.
	Placements []attach.Placement

	// Failures are per-attachment errors. They never prevent the record
	// write; the caller surfaces them as warnings.
	Failures []attach.Failure
}

// Summary is the outcome of a whole import run.
type Summary struct {
	Entries []EntryResult
	Created int
	Merged  int
}

// AttachmentFailures returns the total count of failed placements.
func (s *Summary) AttachmentFailures() int {
	n := 0
	for _, e := range s.Entries {
		n += len(e.Failures)
	}
	return n
}

// Run imports a bulk bibliography file into the store.
//
// A parse failure of the bulk file aborts the whole run before anything is
// written: the input is small and user-authored, and partial corrupted
// imports must not occur. Entries are processed in source order; each store
// write is individually atomic, so rerunning an interrupted import resumes
// safely.
func Run(st *store.Store, bulk []byte, opts Options) (*Summary, error) {
	records, err := bibtex.Parse(string(bulk))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records in import file")
	}

	summary := &Summary{}
	for _, rec := range records {
		entry, err := importOne(st, rec, opts)
		if err != nil {
			return nil, err
		}
		summary.Entries = append(summary.Entries, entry)
		switch entry.Action {
		case ActionCreated:
			summary.Created++
		case ActionMerged:
			summary.Merged++
		}
	}
	return summary, nil
}

func importOne(st *store.Store, rec bibtex.Record, opts Options) (EntryResult, error) {
	ref := destinationPath(&rec)
	sources := attachmentSources(&rec)

	result := EntryResult{Key: rec.Key, Ref: ref}

	exists := st.Exists(ref)
	if opts.DryRun {
		result.Action = ActionPlanned
		for _, src := range sources {
			result.Placements = append(result.Placements, attach.Placement{Source: src})
		}
		return result, nil
	}

	merged := []bibtex.Record{rec}
	result.Action = ActionCreated
	if exists {
		existing, err := st.Read(ref)
		if err != nil {
			// Merging onto an unreadable record would risk destroying it.
			return result, fmt.Errorf("cannot merge into %s: %w", ref, err)
		}
		mergeInto(existing, rec)
		merged = existing
		result.Action = ActionMerged
	}

	// The directory must exist before attachments can land in it; the
	// record write below is what makes it a reference.
	dir, err := st.EnsureDir(ref)
	if err != nil {
		return result, err
	}
	result.Placements, result.Failures = attach.Place(sources, dir, opts.Mode)

	if err := st.Write(ref, merged); err != nil {
		return result, err
	}
	return result, nil
}

// mergeInto layers rec onto the existing record with the same citation key,
// or onto the first record when no key matches. Fields present only in the
// old record survive re-imports.
func mergeInto(existing []bibtex.Record, rec bibtex.Record) {
	for i := range existing {
		if existing[i].Key == rec.Key {
			existing[i].Merge(rec)
			return
		}
	}
	existing[0].Merge(rec)
}

// destinationPath extracts and removes the collection/collectionN fields and
// joins them into one reference path. The numbered-sibling-field encoding is
// an artifact of a flat field model expressing a hierarchy: fields sort by
// numeric suffix (absent = 0) and their values concatenate into one nested
// path. Entries without any collection field land under "imported/".
func destinationPath(rec *bibtex.Record) string {
	type segment struct {
		order int
		value string
	}
	var segments []segment

	for _, f := range rec.Fields {
		if n, ok := collectionSuffix(f.Name); ok {
			segments = append(segments, segment{order: n, value: f.Value})
		}
	}
	kept := rec.Fields[:0]
	for _, f := range rec.Fields {
		if _, ok := collectionSuffix(f.Name); !ok {
			kept = append(kept, f)
		}
	}
	rec.Fields = kept

	sort.SliceStable(segments, func(i, j int) bool { return segments[i].order < segments[j].order })

	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.value)
	}
	if path := refpath.Sanitize(strings.Join(parts, "/")); path != "" {
		return path
	}
	return refpath.Join(fallbackPrefix, fallbackName(rec))
}

// collectionSuffix parses "collection" (0) and "collectionN" field names.
func collectionSuffix(name string) (int, bool) {
	if !strings.HasPrefix(name, collectionField) {
		return 0, false
	}
	rest := name[len(collectionField):]
	if rest == "" {
		return 0, true
	}
	n := 0
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// fallbackName derives a directory name for entries without a collection:
// first author's surname plus year when available, otherwise the citation
// key.
func fallbackName(rec *bibtex.Record) string {
	author, hasAuthor := rec.Get("author")
	year, hasYear := rec.Get("year")
	if hasAuthor && hasYear {
		first := strings.SplitN(author, " and ", 2)[0]
		surname := strings.TrimSpace(strings.SplitN(first, ",", 2)[0])
		if surname != "" {
			return refpath.SanitizeSegment(surname + "_" + year)
		}
	}
	return refpath.SanitizeSegment(rec.Key)
}

// attachmentSources extracts and removes the file field: a ';'-delimited
// list of source paths, empty components discarded.
func attachmentSources(rec *bibtex.Record) []string {
	raw, ok := rec.Get(fileField)
	if !ok {
		return nil
	}
	rec.Delete(fileField)

	var sources []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			sources = append(sources, part)
		}
	}
	return sources
}
