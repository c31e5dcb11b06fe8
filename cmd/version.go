package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/curriculum"
)

// version is set via -ldflags at build time.
var version = "(devel)"

type versionInfo struct {
	Version    string `json:"version"`
	Curriculum string `json:"seed_curriculum"`
	Go         string `json:"go"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the binary and embedded curriculum versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{Version: version, Go: runtime.Version()}
		if f, err := curriculum.Seed(); err == nil {
			info.Curriculum = f.Version
		}
		if wantJSON(cmd) {
			return printJSON(cmd, info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "kinderpath %s (curriculum %s, %s)\n", info.Version, info.Curriculum, info.Go)
		return nil
	},
}
