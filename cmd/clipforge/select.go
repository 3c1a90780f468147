package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/catalog"
	"github.com/clipforge/clipforge-agent/internal/config"
	"github.com/clipforge/clipforge-agent/internal/export"
	"github.com/clipforge/clipforge-agent/internal/logging"
	"github.com/clipforge/clipforge-agent/internal/probe"
	"github.com/clipforge/clipforge-agent/internal/scoring"
	"github.com/clipforge/clipforge-agent/internal/selection"
	"github.com/clipforge/clipforge-agent/internal/transition"
)

var selectFlags struct {
	policy          string
	clipLength      float64
	targetTotal     float64
	diversityWeight float64
	minSceneScore   float64
	minGap          float64
	seed            int64
	edlDir          string
	jsonOut         bool
}

var selectCmd = &cobra.Command{
	Use:   "select <folder>",
	Short: "Select clips from a folder of video in one shot",
	Long: `Select scans a folder, probes file durations with ffprobe, and runs the
selection engine directly, without the daemon or its catalog. Results print
as a table on a terminal and as JSON otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelect(cmd.Context(), args[0])
	},
}

func init() {
	f := selectCmd.Flags()
	f.StringVar(&selectFlags.policy, "policy", config.DefaultPolicy, "selection policy (plain or diversity)")
	f.Float64Var(&selectFlags.clipLength, "clip-length", config.DefaultClipLengthSec, "clip length in seconds")
	f.Float64Var(&selectFlags.targetTotal, "target", config.DefaultTargetTotalSec, "target total duration in seconds")
	f.Float64Var(&selectFlags.diversityWeight, "diversity-weight", 0, "diversity weight in [0,1] (diversity policy)")
	f.Float64Var(&selectFlags.minSceneScore, "min-scene-score", 0, "minimum scene score for diversity candidates")
	f.Float64Var(&selectFlags.minGap, "min-gap", config.DefaultMinGapSec, "minimum gap between clips from the same file, in seconds")
	f.Int64Var(&selectFlags.seed, "seed", 0, "random seed (0 picks one from the clock)")
	f.StringVar(&selectFlags.edlDir, "edl", "", "also write a CMX3600 EDL into this directory")
	f.BoolVar(&selectFlags.jsonOut, "json", false, "force JSON output")
}

func runSelect(ctx context.Context, folder string) error {
	logger := logging.NewLogger("warn")

	prober := probe.NewFFprobe(logger)
	if !prober.Available() {
		return fmt.Errorf("ffprobe not found on PATH; install ffmpeg to probe durations")
	}

	sources, err := collectSources(ctx, folder, prober)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no video files found under %s", folder)
	}

	seed := selectFlags.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	params := selection.Params{
		ClipLength:      selectFlags.clipLength,
		TargetTotal:     selectFlags.targetTotal,
		Policy:          selection.Policy(selectFlags.policy),
		DiversityWeight: selectFlags.diversityWeight,
		MinSceneScore:   selectFlags.minSceneScore,
		MinGap:          selectFlags.minGap,
		Seed:            seed,
	}

	scorer := scoring.NewHeuristic(rng, probe.DurationAdapter{P: prober}, logger)
	engine := selection.NewEngine(scorer, rng, logger)

	res, err := engine.Select(ctx, sources, params)
	if err != nil {
		return err
	}

	clips := transition.New(rng, logger).Optimize(res.Clips)

	if selectFlags.edlDir != "" {
		if err := writeEDL(clips, selectFlags.edlDir); err != nil {
			return err
		}
	}

	if selectFlags.jsonOut || !isatty.IsTerminal(os.Stdout.Fd()) {
		return printJSON(clips, res, seed)
	}
	printTable(clips, res, seed)
	return nil
}

func collectSources(ctx context.Context, folder string, prober probe.Prober) ([]selection.Source, error) {
	var sources []selection.Source
	err := filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != folder {
				return filepath.SkipDir
			}
			return nil
		}
		if !catalog.IsVideoFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		src := selection.Source{
			ID:        p,
			Path:      p,
			Timestamp: catalog.ShotAtFromName(d.Name(), info.ModTime()),
		}
		if res, err := prober.Probe(ctx, p); err != nil {
			fmt.Fprintf(os.Stderr, "warning: probe failed for %s, skipping: %v\n", p, err)
		} else {
			src.Duration = res.Duration
		}
		sources = append(sources, src)
		return nil
	})
	return sources, err
}

func writeEDL(clips []selection.Clip, dir string) error {
	if err := export.ValidateOutputDir(dir); err != nil {
		return err
	}

	resolved := make([]export.ResolvedClip, len(clips))
	for i, c := range clips {
		startMs := int(c.Start * 1000)
		resolved[i] = export.ResolvedClip{
			ClipName:  filepath.Base(c.Path),
			MediaPath: c.Path,
			StartMs:   startMs,
			EndMs:     startMs + int(c.Duration*1000),
		}
	}

	edl := export.GenerateEDL(resolved, "ClipForge Selection", 30)
	outPath := filepath.Join(dir, "clipforge-selection.edl")
	if err := os.WriteFile(outPath, []byte(edl), 0644); err != nil {
		return fmt.Errorf("write EDL: %w", err)
	}
	fmt.Fprintf(os.Stderr, "EDL written to %s\n", outPath)
	return nil
}

type selectOutput struct {
	Policy       string           `json:"policy"`
	Seed         int64            `json:"seed"`
	RequestedSec float64          `json:"requested_sec"`
	AchievedSec  float64          `json:"achieved_sec"`
	ShortfallSec float64          `json:"shortfall_sec"`
	Clips        []selection.Clip `json:"clips"`
}

func printJSON(clips []selection.Clip, res *selection.Result, seed int64) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(selectOutput{
		Policy:       string(res.Policy),
		Seed:         seed,
		RequestedSec: res.RequestedSec,
		AchievedSec:  res.AchievedSec,
		ShortfallSec: res.ShortfallSec,
		Clips:        clips,
	})
}

func printTable(clips []selection.Clip, res *selection.Result, seed int64) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "File", "Start", "Length", "Shot At"})
	for i, c := range clips {
		t.AppendRow(table.Row{
			i + 1,
			filepath.Base(c.Path),
			fmt.Sprintf("%.2fs", c.Start),
			fmt.Sprintf("%.2fs", c.Duration),
			c.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%.1fs", res.AchievedSec),
		fmt.Sprintf("target %.1fs", res.RequestedSec)})
	t.SetStyle(table.StyleLight)
	t.Render()

	if res.ShortfallSec > 0 {
		fmt.Printf("\nshort by %.1fs: sources lack capacity for the full target\n", res.ShortfallSec)
	}
	fmt.Printf("seed %d reproduces this selection\n", seed)
}
