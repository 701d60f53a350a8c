package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/index"
	"github.com/skjoldr/mimir/internal/ui"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the full-text search index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return handleError(ErrStoreNotFound, err, "")
		}

		ix, err := index.Open(st)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer ix.Close()

		var spinner *ui.Spinner
		if !isJSONOutput() {
			spinner = ui.NewSpinner("Indexing references")
			spinner.Start()
		}
		count, err := ix.Rebuild(st)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]int{"indexed": count}, &Meta{Count: count})
			return nil
		}

		fmt.Println(ui.Successf("Indexed %d reference%s", count, plural(count)))
		return nil
	},
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
