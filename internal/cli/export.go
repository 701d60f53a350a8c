package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/config"
	"github.com/skjoldr/mimir/internal/exporter"
	"github.com/skjoldr/mimir/internal/selector"
	"github.com/skjoldr/mimir/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Run configured exports",
	Long: `Aggregates selected references into single .bib files, as configured
in the store's .mimir/exports.yaml. With a name, runs just that export;
without, runs all of them.

Each export names source patterns (gitignore-style, matched against
reference paths) and a destination file. Destinations are rewritten
atomically and deterministically, so they diff cleanly under version
control.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return handleError(ErrStoreNotFound, err, "")
	}

	specs, err := loadStoreExports(st)
	if err != nil {
		return handleError(ErrConfigInvalid, err, "Fix exports.yaml and try again")
	}
	if len(specs) == 0 {
		return handleErrorMsg(ErrExportNotFound,
			"no exports configured",
			fmt.Sprintf("Add exports to %s", config.ExportsPath(st.MetaDir())))
	}

	if len(args) == 1 {
		name := args[0]
		spec, ok := specs[name]
		if !ok {
			names := make([]string, 0, len(specs))
			for n := range specs {
				names = append(names, n)
			}
			sort.Strings(names)
			return handleErrorMsg(ErrExportNotFound,
				fmt.Sprintf("export '%s' not found", name),
				fmt.Sprintf("Configured exports: %v", names))
		}
		specs = map[string]config.ExportSpec{name: spec}
	}

	results, failed := exporter.RunAll(st, specs)

	var warnings []Warning
	for _, res := range results {
		for _, w := range res.Warnings {
			warnings = append(warnings, Warning{
				Code:    WarnRecordMalformed,
				Message: w.Err.Error(),
				Ref:     w.Ref,
			})
		}
	}

	if len(failed) > 0 && !isJSONOutput() {
		// Pattern errors are configuration bugs, not skippable records.
		names := make([]string, 0, len(failed))
		for n := range failed {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			err := failed[n]
			code := ErrInternal
			var perr *selector.PatternError
			if errors.As(err, &perr) {
				code = ErrPatternInvalid
			}
			return handleError(code, fmt.Errorf("export '%s': %w", n, err), "Fix exports.yaml and rerun")
		}
	}

	if isJSONOutput() {
		out := make([]map[string]interface{}, 0, len(results))
		for _, res := range results {
			out = append(out, map[string]interface{}{
				"name":        res.Name,
				"destination": res.Destination,
				"count":       res.Count,
			})
		}
		failures := make(map[string]string, len(failed))
		for n, err := range failed {
			failures[n] = err.Error()
		}
		resp := map[string]interface{}{"exports": out}
		if len(failures) > 0 {
			resp["failed"] = failures
		}
		outputSuccessWithWarnings(resp, warnings, &Meta{Count: len(results)})
		return nil
	}

	for _, res := range results {
		fmt.Println(ui.Successf("%s: %d reference%s -> %s",
			res.Name, res.Count, plural(res.Count), ui.FilePath(res.Destination)))
	}
	printWarnings(warnings)
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
