// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/config"
)

var (
	// Global flags
	storeName     string // Named store from config
	storePathFlag string // Explicit path (rare)
	configPath    string

	// Resolved values
	resolvedStorePath string
	cfg               *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mmr",
	Short: "Mimir - A plain-text reference manager",
	Long: `Mimir manages bibliographic references as plain BibTeX files in a
directory tree you own. Each reference is a directory holding a
reference.bib record plus its attachments, and exports aggregate
selections of the tree into single .bib files.

Named for the Norse keeper of the well of wisdom.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store resolution for commands that don't need it
		switch cmd.Name() {
		case "init", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg == nil {
			cfg = &config.Config{}
		}

		// Resolve store path: explicit path > named store > default
		if storePathFlag != "" {
			resolvedStorePath = storePathFlag
		} else {
			resolvedStorePath, err = cfg.GetStorePath(storeName)
			if err != nil {
				if storeName != "" {
					return fmt.Errorf("store '%s' not found\n\nAdd it under [stores] in %s", storeName, config.DefaultPath())
				}
				return fmt.Errorf(`no store specified

Either:
  1. Use --store <name> (from config)
  2. Use --store-path /path/to/store
  3. Set default_store in %s
  4. Run 'mmr init /path/to/new/store' to create one`, config.DefaultPath())
			}
		}

		// Verify store exists
		if _, err := os.Stat(resolvedStorePath); os.IsNotExist(err) {
			return fmt.Errorf("store not found: %s\n\nRun 'mmr init %s' to create it", resolvedStorePath, resolvedStorePath)
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storeName, "store", "s", "", "Named store from config")
	rootCmd.PersistentFlags().StringVar(&storePathFlag, "store-path", "", "Explicit path to store directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getStorePath returns the resolved store path.
func getStorePath() string {
	return resolvedStorePath
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}

func loadGlobalConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}
