package cli

import (
	"fmt"
	"sort"

	"github.com/skjoldr/mimir/internal/attach"
	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/config"
	"github.com/skjoldr/mimir/internal/exporter"
	"github.com/skjoldr/mimir/internal/index"
	"github.com/skjoldr/mimir/internal/store"
	"github.com/skjoldr/mimir/internal/ui"
)

// openStore opens the resolved store.
func openStore() (*store.Store, error) {
	st, err := store.Open(getStorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// resolveTransferMode picks the transfer mode from a flag value or the
// configured default.
func resolveTransferMode(flagValue string) (attach.Mode, error) {
	s := flagValue
	if s == "" {
		s = getConfig().GetTransferMode()
	}
	return attach.ParseMode(s)
}

// loadStoreExports loads the export specs from the store's exports.yaml.
// A missing file yields an empty map.
func loadStoreExports(st *store.Store) (map[string]config.ExportSpec, error) {
	return config.LoadExports(config.ExportsPath(st.MetaDir()))
}

// runConfiguredExports re-runs every configured export and reports the
// outcome. Used after mutations so destination files track the store.
// Failures are printed as warnings, never returned.
func runConfiguredExports(st *store.Store) []Warning {
	specs, err := loadStoreExports(st)
	if err != nil {
		return []Warning{{Code: WarnExportFailed, Message: err.Error()}}
	}
	if len(specs) == 0 {
		return nil
	}

	var warnings []Warning
	results, failed := exporter.RunAll(st, specs)
	for _, res := range results {
		for _, w := range res.Warnings {
			warnings = append(warnings, Warning{
				Code:    WarnRecordMalformed,
				Message: fmt.Sprintf("export '%s': %v", res.Name, w.Err),
				Ref:     w.Ref,
			})
		}
	}
	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		warnings = append(warnings, Warning{
			Code:    WarnExportFailed,
			Message: fmt.Sprintf("export '%s': %v", name, failed[name]),
		})
	}
	return warnings
}

// maybeIndex updates the search index for a single reference.
// Best-effort: a missing or broken index never blocks the mutation.
func maybeIndex(st *store.Store, ref string, records []bibtex.Record) []Warning {
	ix, err := index.Open(st)
	if err != nil {
		return []Warning{{Code: WarnIndexUpdateFailed, Message: err.Error(), Ref: ref}}
	}
	defer ix.Close()

	if records == nil {
		err = ix.Delete(ref)
	} else {
		err = ix.Update(ref, records)
	}
	if err != nil {
		return []Warning{{Code: WarnIndexUpdateFailed, Message: err.Error(), Ref: ref}}
	}
	return nil
}

// printWarnings prints warnings in text mode.
func printWarnings(warnings []Warning) {
	for _, w := range warnings {
		if w.Ref != "" {
			fmt.Println(ui.Warningf("%s: %s", w.Ref, w.Message))
		} else {
			fmt.Println(ui.Warning(w.Message))
		}
	}
}
