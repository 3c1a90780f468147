package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/logging"
	"github.com/clipforge/clipforge-agent/internal/probe"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Probe a video file's metadata with ffprobe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.NewLogger("warn")
		prober := probe.NewFFprobe(logger)
		if !prober.Available() {
			return fmt.Errorf("ffprobe not found on PATH; install ffmpeg")
		}

		res, err := prober.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !isatty.IsTerminal(os.Stdout.Fd()) {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Duration", fmt.Sprintf("%.3fs", res.Duration)},
			{"Resolution", fmt.Sprintf("%dx%d", res.Width, res.Height)},
			{"Codec", res.Codec},
			{"Frame rate", fmt.Sprintf("%.3f", res.FrameRate)},
			{"Audio", res.HasAudio},
		})
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}
