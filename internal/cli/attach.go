package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/attach"
	"github.com/skjoldr/mimir/internal/refpath"
	"github.com/skjoldr/mimir/internal/ui"
)

var attachModeStr string

var attachCmd = &cobra.Command{
	Use:   "attach <ref> [file...]",
	Short: "Attach files to a reference",
	Long: `Places files into a reference's directory using the configured
transfer mode (hard link, copy, or move; override with --mode).

With no files given, attaches the newest file in the configured watch
directory. Handy right after a browser download:

  mmr attach cs/ai/aima                # newest file in watch_dir
  mmr attach cs/ai/aima ~/notes.pdf    # explicit file
  mmr attach cs/ai/aima a.pdf b.pdf --mode mv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := refpath.Normalize(args[0])
		sources := args[1:]

		st, err := openStore()
		if err != nil {
			return handleError(ErrStoreNotFound, err, "")
		}
		if !st.Exists(ref) {
			return handleErrorMsg(ErrRefNotFound,
				fmt.Sprintf("reference '%s' not found", ref),
				fmt.Sprintf("Run 'mmr new %s' to create it", ref))
		}

		mode, err := resolveTransferMode(attachModeStr)
		if err != nil {
			return handleError(ErrInvalidInput, err, "Valid modes: ln, cp, mv")
		}

		if len(sources) == 0 {
			watchDir := getConfig().GetWatchDir()
			if watchDir == "" {
				return handleErrorMsg(ErrMissingArgument,
					"no file given and no watch_dir configured",
					"Pass a file path or set watch_dir in config")
			}
			latest, err := attach.LatestIn(watchDir)
			if err != nil {
				return handleError(ErrWatchDirEmpty, err, "")
			}
			sources = []string{latest}
		}

		destDir, err := st.Dir(ref)
		if err != nil {
			return handleError(ErrRefInvalid, err, "")
		}
		placements, failures := attach.Place(sources, destDir, mode)
		warnings := attachWarnings(ref, placements, failures)

		if len(placements) == 0 && len(failures) > 0 {
			if isJSONOutput() {
				outputError(ErrAttachmentFailed, failures[0].Error(), nil, "")
				return nil
			}
			return fmt.Errorf("%s", failures[0].Error())
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]interface{}{
				"ref":         ref,
				"attachments": placementNames(placements),
				"mode":        mode.String(),
			}, warnings, &Meta{Count: len(placements)})
			return nil
		}

		for _, p := range placements {
			fmt.Println(ui.Successf("Attached %s to %s", p.Name, ui.RefPath(ref)))
		}
		printWarnings(warnings)
		return nil
	},
}

func init() {
	attachCmd.Flags().StringVar(&attachModeStr, "mode", "", "Attachment transfer mode: ln, cp, mv")
	rootCmd.AddCommand(attachCmd)
}
