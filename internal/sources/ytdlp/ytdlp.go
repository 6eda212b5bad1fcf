// Package ytdlp extracts formats by running yt-dlp and reading its JSON dump.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/xymaxim/fmtinfo/internal/exec"
	"github.com/xymaxim/fmtinfo/internal/formats"
	"github.com/xymaxim/fmtinfo/internal/response"
	"github.com/xymaxim/fmtinfo/internal/sources"
)

const Name = "ytdlp"

type Fetcher struct {
	Runner      exec.Runner
	CookiesFile string
}

type jsonDump struct {
	Title      string      `json:"title"`
	Duration   *float64    `json:"duration"`
	ViewCount  *int64      `json:"view_count"`
	Thumbnail  string      `json:"thumbnail"`
	Thumbnails []thumbnail `json:"thumbnails"`
	Formats    []format    `json:"formats"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
}

type format struct {
	FormatID       string   `json:"format_id"`
	URL            string   `json:"url"`
	Ext            string   `json:"ext"`
	VideoCodec     *string  `json:"vcodec"`
	AudioCodec     *string  `json:"acodec"`
	Height         *int     `json:"height"`
	FormatNote     string   `json:"format_note"`
	AudioBitrate   *float64 `json:"abr"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	Protocol       string   `json:"protocol"`
}

func (f *Fetcher) Name() string {
	return Name
}

func (f *Fetcher) Extract(ctx context.Context, videoURL string) (*sources.Extraction, error) {
	out, err := f.runDumpJSON(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("dumping video info: %w", err)
	}

	var dump jsonDump
	if err := json.Unmarshal(out, &dump); err != nil {
		return nil, fmt.Errorf("parsing info dump: %w: %w", sources.ErrNoData, err)
	}

	descs := make([]formats.Descriptor, 0, len(dump.Formats))
	for _, fm := range dump.Formats {
		descs = append(descs, mapFormat(fm))
	}

	return &sources.Extraction{
		Metadata:    mapMetadata(dump),
		Descriptors: descs,
	}, nil
}

func mapFormat(f format) formats.Descriptor {
	return formats.Descriptor{
		VideoCodec:  codec(f.VideoCodec),
		AudioCodec:  codec(f.AudioCodec),
		Ext:         f.Ext,
		URL:         f.URL,
		Size:        formats.FromPtr(toInt64(f.Filesize)),
		ApproxSize:  formats.FromPtr(toInt64(f.FilesizeApprox)),
		Height:      formats.FromPtr(f.Height),
		QualityNote: f.FormatNote,
		Bitrate:     formats.FromPtr(f.AudioBitrate),
		Protocol:    f.Protocol,
	}
}

func mapMetadata(dump jsonDump) response.Metadata {
	meta := response.Metadata{
		Title:     dump.Title,
		Thumbnail: dump.Thumbnail,
	}
	if dump.Duration != nil {
		meta.Duration = *dump.Duration
	}
	if dump.ViewCount != nil {
		meta.Views = *dump.ViewCount
	}
	for _, t := range dump.Thumbnails {
		c := response.ThumbnailCandidate{URL: t.URL}
		if t.Width != nil {
			c.Width = *t.Width
		}
		if t.Height != nil {
			c.Height = *t.Height
		}
		meta.Thumbnails = append(meta.Thumbnails, c)
	}
	return meta
}

// codec maps a JSON null, which yt-dlp uses for an absent track in some
// extractors, to the "none" marker.
func codec(c *string) string {
	if c == nil {
		return formats.NoCodec
	}
	return *c
}

func toInt64(v *float64) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func (f *Fetcher) runDumpJSON(ctx context.Context, videoURL string) ([]byte, error) {
	args := []string{"--dump-single-json", "--no-playlist", "--no-warnings"}
	if f.CookiesFile != "" {
		args = append(args, "--cookies", f.CookiesFile)
	}
	args = append(args, "--", videoURL)

	result, err := f.Runner.RunWith(ctx, []exec.Option{exec.WithQuiet()}, args...)
	if err != nil {
		var stderr []byte
		if result != nil {
			stderr = result.Stderr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", sources.ErrUnavailable, ctxErr)
		}
		slog.Debug("yt-dlp failed", "url", videoURL, "stderr", string(stderr), "err", err)
		return nil, classifyFailure(stderr, err)
	}

	return result.Stdout, nil
}

var (
	blockedMarkers = []string{
		"sign in to confirm",
		"private video",
		"http error 403",
		"http error 429",
		"members-only",
		"age-restricted",
	}
	invalidMarkers = []string{
		"unsupported url",
		"is not a valid url",
		"incomplete youtube id",
	}
)

func classifyFailure(stderr []byte, err error) error {
	message := strings.ToLower(string(stderr))
	detail := lastErrorLine(stderr)

	kind := sources.ErrUnavailable
	switch {
	case containsAny(message, blockedMarkers):
		kind = sources.ErrBlocked
	case containsAny(message, invalidMarkers):
		kind = sources.ErrInvalidURL
	}
	if detail == "" {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return fmt.Errorf("%w: %w", &sources.MessageError{Kind: kind, Msg: detail}, err)
}

func lastErrorLine(stderr []byte) string {
	lines := bytes.Split(bytes.TrimSpace(stderr), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(string(lines[i]))
		if after, ok := strings.CutPrefix(line, "ERROR: "); ok {
			return after
		}
	}
	return ""
}

func containsAny(s string, markers []string) bool {
	return lo.ContainsBy(markers, func(m string) bool {
		return strings.Contains(s, m)
	})
}

var _ sources.Source = (*Fetcher)(nil)
