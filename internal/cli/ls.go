package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/refpath"
	"github.com/skjoldr/mimir/internal/ui"
)

var lsLong bool

var lsCmd = &cobra.Command{
	Use:   "ls [prefix]",
	Short: "List references, optionally under a prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = refpath.Normalize(args[0])
		}

		st, err := openStore()
		if err != nil {
			return handleError(ErrStoreNotFound, err, "")
		}

		refs, err := st.List(prefix)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"prefix": prefix,
				"refs":   refs,
			}, &Meta{Count: len(refs)})
			return nil
		}

		if len(refs) == 0 {
			if prefix != "" {
				fmt.Printf("No references under '%s'\n", prefix)
			} else {
				fmt.Println("No references yet")
				fmt.Println(ui.Hint("Run 'mmr new <ref>' to create one"))
			}
			return nil
		}

		for _, ref := range refs {
			if lsLong {
				if records, err := st.Read(ref); err == nil && len(records) > 0 {
					title, _ := records[0].Get("title")
					fmt.Printf("%s  %s\n", ui.RefPath(ref), ui.Hint(title))
					continue
				}
			}
			fmt.Println(ref)
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Show titles alongside refs")
	rootCmd.AddCommand(lsCmd)
}
