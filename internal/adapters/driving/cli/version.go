package cli

import (
	"encoding/json"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionShort bool

type buildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit,omitempty"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if versionShort {
			cmd.Println(version)
			return nil
		}
		info := currentBuild()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.Marshal(info)
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		}
		cmd.Printf("postop version %s\n", info.Version)
		if info.Commit != "" {
			cmd.Printf("  commit:   %s\n", info.Commit)
		}
		cmd.Printf("  go:       %s\n", info.Go)
		cmd.Printf("  platform: %s\n", info.Platform)
		return nil
	},
}

func currentBuild() buildInfo {
	info := buildInfo{
		Version:  version,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				info.Commit = s.Value[:12]
			}
		}
	}
	return info
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	versionCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(versionCmd)
}
