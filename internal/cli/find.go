package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/index"
	"github.com/skjoldr/mimir/internal/ui"
)

var findLimit int

var findCmd = &cobra.Command{
	Use:   "find <terms...>",
	Short: "Full-text search over reference records",
	Long: `Searches the full-text index over citation keys and record fields.
All terms must match. Run 'mmr reindex' first if the index is stale.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		st, err := openStore()
		if err != nil {
			return handleError(ErrStoreNotFound, err, "")
		}

		ix, err := index.Open(st)
		if err != nil {
			return handleError(ErrDatabaseError, err, "Run 'mmr reindex' to rebuild the index")
		}
		defer ix.Close()

		results, err := ix.Search(query, findLimit)
		if err != nil {
			return handleError(ErrDatabaseError, err, "Run 'mmr reindex' to rebuild the index")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"query":   query,
				"results": results,
			}, &Meta{Count: len(results)})
			return nil
		}

		if len(results) == 0 {
			fmt.Printf("No matches for '%s'\n", query)
			return nil
		}
		for _, r := range results {
			fmt.Printf("%s  %s\n", ui.RefPath(r.Path), ui.Hint(r.Snippet))
		}
		return nil
	},
}

func init() {
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", 20, "Maximum number of results")
	rootCmd.AddCommand(findCmd)
}
