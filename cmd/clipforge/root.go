package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "clipforge",
	Short: "ClipForge assembles highlight reels from folders of video",
	Long: `ClipForge scans folders of video files, scores candidate moments, and
selects non-overlapping clips into an editor-ready sequence. Run it as a
background agent with "clipforge daemon", or one-shot against a folder
with "clipforge select".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       fmt.Sprintf("%s (built %s, commit %s)", config.Version, config.BuildTime, config.GitCommit),
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}
