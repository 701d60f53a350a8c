// Package exporter implements the export-aggregation engine: it selects a
// subset of the store with ordered include/exclude patterns and concatenates
// the matching records into one merged bibliography file.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/skjoldr/mimir/internal/atomicfile"
	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/config"
	"github.com/skjoldr/mimir/internal/selector"
	"github.com/skjoldr/mimir/internal/store"
)

// Warning records one reference that was skipped during an export.
type Warning struct {
	Ref string
	Err error
}

// Result summarizes one export run.
type Result struct {
	Name        string
	Destination string
	Count       int
	Warnings    []Warning
}

// Run evaluates one export specification against the store.
//
// The store is walked in lexicographic order and the destination is fully
// overwritten, so reruns against unchanged content are byte-identical. A
// reference whose record fails to parse is skipped with a warning, since
// exports scan the live store and must tolerate isolated corruption. An invalid
// pattern is fatal to this spec (and only this spec).
func Run(st *store.Store, name string, spec config.ExportSpec) (*Result, error) {
	sel, err := selector.Compile(spec.Source)
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", name, err)
	}

	result := &Result{Name: name, Destination: spec.ExpandedDestination()}

	var records []bibtex.Record
	err = st.Walk("", func(ref string) error {
		if !sel.Match(ref) {
			return nil
		}
		recs, readErr := st.Read(ref)
		if readErr != nil {
			result.Warnings = append(result.Warnings, Warning{Ref: ref, Err: readErr})
			return nil
		}
		records = append(records, recs...)
		result.Count += len(recs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", name, err)
	}

	if dir := filepath.Dir(result.Destination); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("export %q: create destination directory: %w", name, err)
		}
	}
	if err := atomicfile.WriteFile(result.Destination, []byte(bibtex.Serialize(records)), 0o644); err != nil {
		return nil, fmt.Errorf("export %q: %w", name, err)
	}
	return result, nil
}

// RunAll evaluates every configured export in name order. A failing spec
// (bad pattern, unwritable destination) does not stop the others; its error
// is reported alongside the successful results.
func RunAll(st *store.Store, specs map[string]config.ExportSpec) ([]*Result, map[string]error) {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*Result
	failed := make(map[string]error)
	for _, name := range names {
		res, err := Run(st, name, specs[name])
		if err != nil {
			failed[name] = err
			continue
		}
		results = append(results, res)
	}
	return results, failed
}
