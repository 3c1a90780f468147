package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// jsonTimeline is the shape written for the "json" format. Record times are
// cumulative, matching the EDL's record track.
type jsonTimeline struct {
	Title     string         `json:"title"`
	FrameRate float64        `json:"frame_rate"`
	Clips     []jsonClip     `json:"clips"`
	Totals    timelineTotals `json:"totals"`
}

type jsonClip struct {
	Position  int     `json:"position"`
	Name      string  `json:"name"`
	MediaPath string  `json:"media_path"`
	SourceIn  float64 `json:"source_in_sec"`
	SourceOut float64 `json:"source_out_sec"`
	RecordIn  float64 `json:"record_in_sec"`
	RecordOut float64 `json:"record_out_sec"`
	Scene     float64 `json:"scene"`
	Motion    float64 `json:"motion"`
	Color     float64 `json:"color"`
}

type timelineTotals struct {
	ClipCount   int     `json:"clip_count"`
	DurationSec float64 `json:"duration_sec"`
}

func GenerateJSON(clips []ResolvedClip, title string, frameRate float64) ([]byte, error) {
	tl := jsonTimeline{Title: title, FrameRate: frameRate, Clips: make([]jsonClip, 0, len(clips))}

	recordMs := 0
	for i, c := range clips {
		durMs := c.EndMs - c.StartMs
		tl.Clips = append(tl.Clips, jsonClip{
			Position:  i,
			Name:      c.ClipName,
			MediaPath: c.MediaPath,
			SourceIn:  float64(c.StartMs) / 1000,
			SourceOut: float64(c.EndMs) / 1000,
			RecordIn:  float64(recordMs) / 1000,
			RecordOut: float64(recordMs+durMs) / 1000,
			Scene:     c.Scene,
			Motion:    c.Motion,
			Color:     c.Color,
		})
		recordMs += durMs
	}
	tl.Totals = timelineTotals{ClipCount: len(clips), DurationSec: float64(recordMs) / 1000}

	return json.MarshalIndent(tl, "", "  ")
}

func GenerateCSV(clips []ResolvedClip) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"position", "name", "media_path", "source_in_sec", "source_out_sec", "scene", "motion", "color"}); err != nil {
		return nil, err
	}
	for i, c := range clips {
		rec := []string{
			strconv.Itoa(i),
			c.ClipName,
			c.MediaPath,
			formatSec(c.StartMs),
			formatSec(c.EndMs),
			strconv.FormatFloat(c.Scene, 'f', 3, 64),
			strconv.FormatFloat(c.Motion, 'f', 3, 64),
			strconv.FormatFloat(c.Color, 'f', 3, 64),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func formatSec(ms int) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000)
}
