package export

// Format names accepted by the exporter.
const (
	FormatEDL  = "edl"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

type ExportRequest struct {
	SelectionID string  `json:"selection_id"`
	ProjectName string  `json:"project_name"`
	Format      string  `json:"format"`
	FrameRate   float64 `json:"frame_rate"`
	OutputDir   string  `json:"output_dir"`
}

// ResolvedClip is a selection clip joined with its source file, ready for
// timeline generation.
type ResolvedClip struct {
	ClipName  string
	MediaPath string
	StartMs   int
	EndMs     int
	Scene     float64
	Motion    float64
	Color     float64
}

type ExportResponse struct {
	Status          string   `json:"status"`
	Format          string   `json:"format"`
	OutputPath      string   `json:"output_path"`
	ClipCount       int      `json:"clip_count"`
	UnresolvedClips []string `json:"unresolved_clips,omitempty"`
}
