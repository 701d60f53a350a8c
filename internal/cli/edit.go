package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/editor"
	"github.com/skjoldr/mimir/internal/refpath"
	"github.com/skjoldr/mimir/internal/store"
	"github.com/skjoldr/mimir/internal/ui"
)

var editCmd = &cobra.Command{
	Use:   "edit <ref>",
	Short: "Edit a reference record in your editor",
	Long: `Opens the reference's record file in your editor and waits for it to
close. The edited record is validated before it is kept; a record that no
longer parses is rejected and the original is restored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := refpath.Normalize(args[0])

		st, err := openStore()
		if err != nil {
			return handleError(ErrStoreNotFound, err, "")
		}
		if !st.Exists(ref) {
			return handleErrorMsg(ErrRefNotFound,
				fmt.Sprintf("reference '%s' not found", ref),
				fmt.Sprintf("Run 'mmr new %s' to create it", ref))
		}

		ed := getConfig().GetEditor()
		if ed == "" {
			return handleErrorMsg(ErrInvalidInput,
				"no editor configured",
				"Set 'editor' in config or $EDITOR")
		}

		original, err := st.ReadRaw(ref)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		dir, err := st.Dir(ref)
		if err != nil {
			return handleError(ErrRefInvalid, err, "")
		}
		recordFile := filepath.Join(dir, store.RecordFileName)
		if err := editor.Open(ed, recordFile); err != nil {
			return handleError(ErrInternal, err, "")
		}

		edited, err := st.ReadRaw(ref)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		records, err := bibtex.Parse(string(edited))
		if err != nil {
			// Restore the last good record before reporting.
			if restoreErr := st.WriteRaw(ref, original); restoreErr != nil {
				return handleError(ErrInternal,
					fmt.Errorf("record invalid (%v) and restore failed: %w", err, restoreErr), "")
			}
			return handleError(ErrRecordMalformed, err, "Edit rejected; the previous record was restored")
		}

		// Re-serialize so the file stays in canonical form.
		if err := st.Write(ref, records); err != nil {
			return handleError(ErrInternal, err, "")
		}

		warnings := maybeIndex(st, ref, records)
		warnings = append(warnings, runConfiguredExports(st)...)

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]interface{}{
				"ref":  ref,
				"keys": recordKeys(records),
			}, warnings, nil)
			return nil
		}

		fmt.Println(ui.Successf("Updated %s", ui.RefPath(ref)))
		printWarnings(warnings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
