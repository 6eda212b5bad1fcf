package pathutil

import (
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
)

const maxAdjustedLength = 30

// AdjustForFilename turns s into a file-name-safe slug of at most length
// characters (a default length when zero).
func AdjustForFilename(s string, length int) string {
	if length == 0 {
		length = maxAdjustedLength
	}

	slug.MaxLength = length
	slug.Lowercase = false

	return slug.Make(s)
}

func FormatTime(t time.Time) string {
	return t.Format("20060102T150405-07")
}

// BuildReportName returns the path of a saved format report, e.g.
// "dir/Some-video_ytdlp_20250101T120000+00.json".
func BuildReportName(dir, title, source string, t time.Time) string {
	name := AdjustForFilename(title, 0)
	if name == "" {
		name = "video"
	}
	return filepath.Join(dir, name+"_"+source+"_"+FormatTime(t)+".json")
}
