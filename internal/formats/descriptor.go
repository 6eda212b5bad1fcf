// Package formats turns raw stream descriptors reported by a source into the
// combined (video+audio) and audio-only format lists shown to clients.
package formats

import (
	"strings"

	"github.com/samber/mo"
)

const (
	// NoCodec marks a missing track, as reported by yt-dlp.
	NoCodec = "none"
	// UnknownCodec marks a track that is present but whose codec the source
	// does not report.
	UnknownCodec = "unknown"
)

// Descriptor is the canonical form of one stream reported by a source. Each
// source maps its own field names into it before classification.
type Descriptor struct {
	VideoCodec  string
	AudioCodec  string
	Ext         string
	URL         string
	Size        mo.Option[int64]
	ApproxSize  mo.Option[int64]
	Height      mo.Option[int]
	QualityNote string
	// Bitrate is the audio bitrate in kbps.
	Bitrate  mo.Option[float64]
	Protocol string
}

// HasVideo reports whether the descriptor carries a video track.
func (d Descriptor) HasVideo() bool {
	return hasTrack(d.VideoCodec)
}

// HasAudio reports whether the descriptor carries an audio track.
func (d Descriptor) HasAudio() bool {
	return hasTrack(d.AudioCodec)
}

// Eligible reports whether the descriptor points to a plain HTTP(S) resource.
// Streaming manifests and fragmented protocols are not eligible.
func (d Descriptor) Eligible() bool {
	if strings.TrimSpace(d.URL) == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(d.Protocol)) {
	case "", "http", "https":
		return true
	default:
		return false
	}
}

func hasTrack(codec string) bool {
	c := strings.ToLower(strings.TrimSpace(codec))
	return c != "" && c != NoCodec
}

// FromPtr converts an optional value decoded from JSON into an Option.
func FromPtr[T any](p *T) mo.Option[T] {
	if p == nil {
		return mo.None[T]()
	}
	return mo.Some(*p)
}

// Positive keeps only strictly positive sizes, heights and bitrates; sources
// use zero for "unknown".
func Positive[T int | int64 | float64](v T) mo.Option[T] {
	if v > 0 {
		return mo.Some(v)
	}
	return mo.None[T]()
}
