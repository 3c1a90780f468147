package catalog

import (
	"regexp"
	"time"
)

// shotAtPattern matches camera-style timestamps embedded in filenames, e.g.
// "GX010042_20240316_142233.MP4" or "2024-03-16 14.22.33.mov".
var shotAtPattern = regexp.MustCompile(`(20\d{2})[-_.]?(\d{2})[-_.]?(\d{2})[T _.-]?(\d{2})[-_.]?(\d{2})[-_.]?(\d{2})`)

// ShotAtFromName extracts a capture timestamp from a filename's naming
// convention, falling back to the file's modification time. The timestamp
// only orders clips in the final sequence, so a wrong-but-stable fallback is
// acceptable.
func ShotAtFromName(filename string, mtime time.Time) time.Time {
	m := shotAtPattern.FindStringSubmatch(filename)
	if m == nil {
		return mtime
	}

	ts, err := time.ParseInLocation("20060102150405", m[1]+m[2]+m[3]+m[4]+m[5]+m[6], time.Local)
	if err != nil {
		return mtime
	}
	// Guard against digit runs that match the shape but not the calendar,
	// like serial numbers parsed into month 13.
	if ts.Year() < 2000 || ts.Year() > 2100 {
		return mtime
	}
	return ts
}
