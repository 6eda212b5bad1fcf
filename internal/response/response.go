// Package response assembles the JSON record returned to clients.
package response

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/xymaxim/fmtinfo/internal/formats"
	"github.com/xymaxim/fmtinfo/internal/humanize"
)

const (
	UntitledVideo = "Untitled Video"
	// DefaultThumbnailResolution labels a thumbnail of unknown size.
	DefaultThumbnailResolution = "HQ"
)

// Metadata holds the top-level values reported by a source. Duration and
// Views are kept loosely typed: sources report them as integers, floats or
// strings.
type Metadata struct {
	Title      string
	Duration   any
	Views      any
	Thumbnail  string
	Thumbnails []ThumbnailCandidate
}

// ThumbnailCandidate is one thumbnail offered by a source. Zero dimensions
// mean unknown.
type ThumbnailCandidate struct {
	URL    string
	Width  int
	Height int
}

type Thumbnail struct {
	URL        string `json:"url"`
	Resolution string `json:"resolution"`
}

// Response is the record served to clients.
type Response struct {
	Title        string           `json:"title"`
	Duration     string           `json:"duration"`
	Views        string           `json:"views"`
	Thumbnails   []Thumbnail      `json:"thumbnails"`
	VideoFormats []formats.Format `json:"video_formats"`
	AudioFormats []formats.Format `json:"audio_formats"`
	Source       string           `json:"source"`
}

// Assemble combines classified formats with formatted metadata.
func Assemble(meta Metadata, c formats.Classification, source string) Response {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = UntitledVideo
	}

	return Response{
		Title:        title,
		Duration:     humanize.FormatDuration(meta.Duration),
		Views:        humanize.FormatViews(meta.Views),
		Thumbnails:   BuildThumbnails(meta),
		VideoFormats: orEmpty(c.Combined),
		AudioFormats: orEmpty(c.AudioOnly),
		Source:       source,
	}
}

// BuildThumbnails lists candidates by descending width, or falls back to the
// single thumbnail URL. The result is empty, never nil, when nothing is known.
func BuildThumbnails(meta Metadata) []Thumbnail {
	candidates := lo.Filter(meta.Thumbnails, func(c ThumbnailCandidate, _ int) bool {
		return strings.TrimSpace(c.URL) != ""
	})
	if len(candidates) > 0 {
		slices.SortStableFunc(candidates, func(a, b ThumbnailCandidate) int {
			return cmp.Compare(b.Width, a.Width)
		})
		return lo.Map(candidates, func(c ThumbnailCandidate, _ int) Thumbnail {
			return Thumbnail{URL: c.URL, Resolution: thumbnailResolution(c)}
		})
	}

	if url := strings.TrimSpace(meta.Thumbnail); url != "" {
		return []Thumbnail{{URL: url, Resolution: DefaultThumbnailResolution}}
	}
	return []Thumbnail{}
}

func thumbnailResolution(c ThumbnailCandidate) string {
	if c.Width > 0 && c.Height > 0 {
		return fmt.Sprintf("%dx%d", c.Width, c.Height)
	}
	return DefaultThumbnailResolution
}

func orEmpty(fs []formats.Format) []formats.Format {
	if fs == nil {
		return []formats.Format{}
	}
	return fs
}
