package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/importer"
	"github.com/skjoldr/mimir/internal/ui"
)

var (
	importModeStr string
	importDryRun  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a bulk BibTeX file into the store",
	Long: `Imports every entry of a BibTeX file into the store.

Each entry's destination is taken from its collection fields (collection,
collection2, ...), which are joined into a reference path and stripped from
the stored record. Entries without collection fields land under imported/.
Files named in an entry's file field are attached to the reference.

An entry whose destination already exists is merged into it: incoming
fields win, fields only present in the store are kept.

Pass "-" to read the bulk file from stdin.

Examples:
  mmr import ~/zotero-dump.bib
  mmr import --dry-run ~/zotero-dump.bib
  curl -s https://example.org/refs.bib | mmr import -`,
	Args: cobra.ExactArgs(1),
	RunE: runBulkImport,
}

func runBulkImport(cmd *cobra.Command, args []string) error {
	var bulk []byte
	var err error
	if args[0] == "-" {
		bulk, err = io.ReadAll(os.Stdin)
	} else {
		bulk, err = os.ReadFile(args[0])
	}
	if err != nil {
		return handleError(ErrInvalidInput, fmt.Errorf("failed to read import file: %w", err), "")
	}

	st, err := openStore()
	if err != nil {
		return handleError(ErrStoreNotFound, err, "")
	}

	mode, err := resolveTransferMode(importModeStr)
	if err != nil {
		return handleError(ErrInvalidInput, err, "Valid modes: ln, cp, mv")
	}

	var spinner *ui.Spinner
	if !isJSONOutput() && !importDryRun {
		spinner = ui.NewSpinner("Importing entries")
		spinner.Start()
	}
	summary, err := importer.Run(st, bulk, importer.Options{Mode: mode, DryRun: importDryRun})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return handleError(ErrRecordMalformed, err, "Nothing was imported; fix the file and rerun")
	}

	var warnings []Warning
	for _, entry := range summary.Entries {
		warnings = append(warnings, attachWarnings(entry.Ref, entry.Placements, entry.Failures)...)
		if !importDryRun {
			if records, readErr := st.Read(entry.Ref); readErr == nil {
				warnings = append(warnings, maybeIndex(st, entry.Ref, records)...)
			}
		}
	}
	if !importDryRun {
		warnings = append(warnings, runConfiguredExports(st)...)
	}

	if isJSONOutput() {
		entries := make([]map[string]interface{}, 0, len(summary.Entries))
		for _, entry := range summary.Entries {
			entries = append(entries, map[string]interface{}{
				"key":         entry.Key,
				"ref":         entry.Ref,
				"action":      entry.Action,
				"attachments": placementNames(entry.Placements),
			})
		}
		outputSuccessWithWarnings(map[string]interface{}{
			"entries": entries,
			"created": summary.Created,
			"merged":  summary.Merged,
			"dry_run": importDryRun,
		}, warnings, &Meta{Count: len(summary.Entries)})
		return nil
	}

	for _, entry := range summary.Entries {
		fmt.Printf("  %-8s %s %s\n", entry.Action, ui.RefPath(entry.Ref), ui.Hint("("+entry.Key+")"))
	}
	fmt.Println()
	if importDryRun {
		fmt.Printf("Dry run: %d entr%s would be imported\n", len(summary.Entries), pluralY(len(summary.Entries)))
	} else {
		fmt.Println(ui.Successf("Imported %d entr%s (%d created, %d merged)",
			len(summary.Entries), pluralY(len(summary.Entries)), summary.Created, summary.Merged))
	}
	printWarnings(warnings)
	return nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func init() {
	importCmd.Flags().StringVar(&importModeStr, "mode", "", "Attachment transfer mode: ln, cp, mv")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show destinations without writing anything")
	rootCmd.AddCommand(importCmd)
}
