package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

const ffprobeBinary = "ffprobe"

// FFprobe shells out to ffprobe for real metadata.
type FFprobe struct {
	binary string
	logger *slog.Logger
}

// NewFFprobe creates a prober backed by the ffprobe binary on PATH. logger
// may be nil.
func NewFFprobe(logger *slog.Logger) *FFprobe {
	return &FFprobe{binary: ffprobeBinary, logger: logger}
}

func (f *FFprobe) Available() bool {
	_, err := exec.LookPath(f.binary)
	return err == nil
}

func (f *FFprobe) Probe(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, fmt.Errorf("probe: path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	out, err := exec.CommandContext(ctx, f.binary, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var raw ffprobeOutput
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}

	res := &Result{}
	if d, err := strconv.ParseFloat(raw.Format.Duration, 64); err == nil {
		res.Duration = d
	}

	for _, stream := range raw.Streams {
		switch stream.CodecType {
		case "video":
			res.Width = stream.Width
			res.Height = stream.Height
			res.Codec = stream.CodecName
			res.FrameRate = parseFrameRate(stream.RFrameRate)
			// Container-level duration can be missing on some files; the
			// video stream is the fallback.
			if res.Duration == 0 {
				if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
					res.Duration = d
				}
			}
		case "audio":
			res.HasAudio = true
		}
	}

	if f.logger != nil {
		f.logger.Debug("probed file",
			"path", path, "duration", res.Duration, "codec", res.Codec, "fps", res.FrameRate)
	}
	return res, nil
}

// ffprobeOutput matches the subset of ffprobe's JSON the agent reads.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Duration   string `json:"duration"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

// parseFrameRate converts ffprobe's rational rate ("30000/1001") to a float.
func parseFrameRate(rate string) float64 {
	if rate == "" {
		return 0
	}
	parts := strings.SplitN(rate, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
