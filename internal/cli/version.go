package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/buildinfo"
)

const defaultModulePath = "github.com/skjoldr/mimir"

type versionInfo struct {
	Version    string `json:"version"`
	ModulePath string `json:"module_path"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	GoVersion  string `json:"go_version"`
	GOOS       string `json:"goos"`
	GOARCH     string `json:"goarch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show Mimir version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()

		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		fmt.Printf("mmr %s\n", info.Version)
		fmt.Printf("module: %s\n", info.ModulePath)
		if info.Commit != "" {
			fmt.Printf("commit: %s\n", info.Commit)
		}
		fmt.Printf("go: %s\n", info.GoVersion)
		fmt.Printf("platform: %s/%s\n", info.GOOS, info.GOARCH)
		return nil
	},
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:    "devel",
		ModulePath: defaultModulePath,
		GoVersion:  runtime.Version(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if ok && buildInfo != nil {
		if buildInfo.Main.Path != "" {
			info.ModulePath = buildInfo.Main.Path
		}
		if v := buildInfo.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
		if buildInfo.GoVersion != "" {
			info.GoVersion = buildInfo.GoVersion
		}
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Commit = setting.Value
			case "vcs.time":
				info.CommitTime = setting.Value
			}
		}
	}

	// Release builds inject these via ldflags.
	if info.Version == "devel" && buildinfo.Version != "" {
		info.Version = strings.TrimPrefix(buildinfo.Version, "v")
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}

	return info
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
