package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("boardroom %s\n", version)
		cmd.Printf("  commit:     %s\n", commit)
		cmd.Printf("  built:      %s\n", buildDate)
		cmd.Printf("  go version: %s\n", runtime.Version())
		cmd.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
