// Package main is the entry point for the mmr CLI tool.
package main

import (
	"os"

	"github.com/skjoldr/mimir/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
