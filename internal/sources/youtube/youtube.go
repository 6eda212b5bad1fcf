// Package youtube extracts formats with the github.com/kkdai/youtube/v2
// client library, without external binaries.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/xymaxim/fmtinfo/internal/formats"
	"github.com/xymaxim/fmtinfo/internal/response"
	"github.com/xymaxim/fmtinfo/internal/sources"
)

const Name = "youtube"

type Fetcher struct {
	client *youtube.Client
}

// New returns a fetcher using httpClient for all requests to YouTube.
func New(httpClient *http.Client) *Fetcher {
	return &Fetcher{client: &youtube.Client{HTTPClient: httpClient}}
}

func (f *Fetcher) Name() string {
	return Name
}

func (f *Fetcher) Extract(ctx context.Context, videoURL string) (*sources.Extraction, error) {
	video, err := f.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("getting video: %w", classifyError(err))
	}

	descs := make([]formats.Descriptor, 0, len(video.Formats))
	for i := range video.Formats {
		format := &video.Formats[i]
		d := mapFormat(format)
		if d.URL == "" {
			// Ciphered formats only get a URL after deciphering.
			streamURL, err := f.client.GetStreamURLContext(ctx, video, format)
			if err != nil {
				slog.Debug("skipping format", "itag", format.ItagNo, "err", err)
				continue
			}
			d.URL = streamURL
		}
		descs = append(descs, d)
	}

	return &sources.Extraction{
		Metadata:    mapMetadata(video),
		Descriptors: descs,
	}, nil
}

func mapFormat(f *youtube.Format) formats.Descriptor {
	videoCodec, audioCodec, ext := parseMimeType(f.MimeType, f.AudioChannels)

	bitrate := f.AverageBitrate
	if bitrate <= 0 {
		bitrate = f.Bitrate
	}

	d := formats.Descriptor{
		VideoCodec:  videoCodec,
		AudioCodec:  audioCodec,
		Ext:         ext,
		URL:         f.URL,
		Size:        formats.Positive(f.ContentLength),
		Height:      formats.Positive(f.Height),
		QualityNote: f.QualityLabel,
		Protocol:    "https",
	}
	if videoCodec == formats.NoCodec {
		d.Bitrate = formats.Positive(float64(bitrate) / 1000)
	}
	return d
}

// parseMimeType splits values such as `video/mp4; codecs="avc1.42001E,
// mp4a.40.2"` into track codecs and a container extension.
func parseMimeType(mimeType string, audioChannels int) (videoCodec, audioCodec, ext string) {
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return formats.NoCodec, formats.NoCodec, ""
	}
	kind, subtype, _ := strings.Cut(mediaType, "/")

	var codecs []string
	for c := range strings.SplitSeq(params["codecs"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			codecs = append(codecs, c)
		}
	}

	switch kind {
	case "video":
		videoCodec, audioCodec = formats.UnknownCodec, formats.NoCodec
		if len(codecs) > 0 {
			videoCodec = codecs[0]
		}
		switch {
		case len(codecs) > 1:
			audioCodec = codecs[1]
		case audioChannels > 0:
			audioCodec = formats.UnknownCodec
		}
		return videoCodec, audioCodec, subtype
	case "audio":
		audioCodec = formats.UnknownCodec
		if len(codecs) > 0 {
			audioCodec = codecs[0]
		}
		if subtype == "mp4" {
			subtype = "m4a"
		}
		return formats.NoCodec, audioCodec, subtype
	default:
		return formats.NoCodec, formats.NoCodec, subtype
	}
}

func mapMetadata(video *youtube.Video) response.Metadata {
	meta := response.Metadata{
		Title:    video.Title,
		Duration: int64(video.Duration.Seconds()),
		Views:    video.Views,
	}
	for _, t := range video.Thumbnails {
		meta.Thumbnails = append(meta.Thumbnails, response.ThumbnailCandidate{
			URL:    t.URL,
			Width:  int(t.Width),
			Height: int(t.Height),
		})
	}
	return meta
}

func classifyError(err error) error {
	switch {
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return fmt.Errorf("%w: %w", sources.ErrBlocked, err)
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return fmt.Errorf("%w: %w", sources.ErrInvalidURL, err)
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %w", &sources.MessageError{Kind: sources.ErrBlocked, Msg: statusErr.Reason}, err)
	}
	var codeErr youtube.ErrUnexpectedStatusCode
	if errors.As(err, &codeErr) {
		switch int(codeErr) {
		case http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", sources.ErrBlocked, err)
		}
	}

	return fmt.Errorf("%w: %w", sources.ErrUnavailable, err)
}

var _ sources.Source = (*Fetcher)(nil)
