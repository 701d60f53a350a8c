package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/config"
	"github.com/skjoldr/mimir/internal/store"
	"github.com/skjoldr/mimir/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new reference store",
	Long: `Creates a new reference store at the specified path.

Creates:
  - .mimir/              (store metadata)
  - .mimir/exports.yaml  (export specifications, commented template)
  - .gitignore           (ignores derived files)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		st, err := store.Init(path)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		// Starter exports.yaml, only if absent
		exportsPath := config.ExportsPath(st.MetaDir())
		exportsStatus := "exists"
		if _, err := os.Stat(exportsPath); os.IsNotExist(err) {
			if err := os.WriteFile(exportsPath, []byte(config.StarterExports), 0o644); err != nil {
				return handleError(ErrInternal, fmt.Errorf("failed to write exports.yaml: %w", err), "")
			}
			exportsStatus = "created"
		}

		gitignoreStatus, err := ensureGitignore(st.Root())
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		// Make sure a global config exists so the store can be registered.
		configFile, err := config.CreateDefault()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]string{
				"store":     st.Root(),
				"exports":   exportsStatus,
				"gitignore": gitignoreStatus,
				"config":    configFile,
			}, nil)
			return nil
		}

		fmt.Println(ui.Successf("Initialized store at %s", ui.FilePath(st.Root())))
		fmt.Printf("  exports.yaml: %s\n", exportsStatus)
		fmt.Printf("  .gitignore:   %s\n", gitignoreStatus)
		fmt.Println()
		fmt.Println(ui.Hint(fmt.Sprintf("Add it under [stores] in %s to use it by name", configFile)))
		return nil
	},
}

// ensureGitignore adds the derived-file entries to the store's .gitignore,
// creating the file if needed. Returns "created", "updated", or "unchanged".
func ensureGitignore(root string) (string, error) {
	gitignorePath := filepath.Join(root, ".gitignore")
	entries := []string{store.MetaDirName + "/", store.TrashDirName + "/"}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range entries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return "unchanged", nil
	}

	status := "updated"
	content := existing
	if content == "" {
		status = "created"
		content = "# Mimir derived files\n"
	} else {
		content = strings.TrimRight(content, "\n") + "\n\n# Mimir\n"
	}
	for _, entry := range missing {
		content += entry + "\n"
	}
	if err := os.WriteFile(gitignorePath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write .gitignore: %w", err)
	}
	return status, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
