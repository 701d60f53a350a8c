package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/refpath"
	"github.com/skjoldr/mimir/internal/store"
	"github.com/skjoldr/mimir/internal/ui"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <ref>",
	Short: "Remove a reference",
	Long: `Moves a reference directory (record and attachments) into the store's
.trash/ directory. Use --force to delete it permanently instead.`,
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
				"Run 'mmr ls' to list references")
		}

		var trashed string
		if rmForce {
			if err := st.Remove(ref); err != nil {
				return handleError(ErrInternal, err, "")
			}
		} else {
			trashed, err = st.Trash(ref)
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
		}

		warnings := maybeIndex(st, ref, nil)
		warnings = append(warnings, runConfiguredExports(st)...)

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]interface{}{
				"ref":       ref,
				"permanent": rmForce,
				"trash":     trashed,
			}, warnings, nil)
			return nil
		}

		if rmForce {
			fmt.Println(ui.Successf("Deleted %s", ui.RefPath(ref)))
		} else {
			fmt.Println(ui.Successf("Trashed %s", ui.RefPath(ref)))
			fmt.Println(ui.Hint(fmt.Sprintf("Restore by moving %s back, or empty %s/ when sure", trashed, store.TrashDirName)))
		}
		printWarnings(warnings)
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Delete permanently instead of trashing")
	rootCmd.AddCommand(rmCmd)
}
