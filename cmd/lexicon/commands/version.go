package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Overridden at build time with -ldflags "-X .../commands.version=...".
var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("lexicon %s (%s) %s/%s\n", version, commit, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
