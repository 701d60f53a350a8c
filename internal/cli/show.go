package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/refpath"
	"github.com/skjoldr/mimir/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a reference record and its attachments",
	Args:  cobra.ExactArgs(1),
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

		records, err := st.Read(ref)
		if err != nil {
			return handleError(ErrRecordMalformed, err,
				fmt.Sprintf("Run 'mmr edit %s' to fix the record", ref))
		}
		attachments, err := st.Attachments(ref)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			entries := make([]map[string]interface{}, 0, len(records))
			for _, rec := range records {
				fields := make(map[string]string, len(rec.Fields))
				for _, f := range rec.Fields {
					fields[f.Name] = f.Value
				}
				entries = append(entries, map[string]interface{}{
					"type":   rec.Type,
					"key":    rec.Key,
					"fields": fields,
				})
			}
			outputSuccess(map[string]interface{}{
				"ref":         ref,
				"entries":     entries,
				"attachments": attachments,
			}, &Meta{Count: len(records)})
			return nil
		}

		dir, _ := st.Dir(ref)
		fmt.Println(ui.Header(ref))
		fmt.Println(ui.Hint(dir))
		fmt.Println()
		fmt.Print(bibtex.Serialize(records))
		if len(attachments) > 0 {
			fmt.Println()
			fmt.Println(ui.Header("Attachments"))
			for _, a := range attachments {
				fmt.Printf("  %s\n", ui.FilePath(filepath.Join(dir, a)))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
