package formats

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
)

const (
	// NotAvailable labels a combined stream without any resolution signal.
	NotAvailable = "N/A"
	// DefaultQuality labels an audio stream without any quality signal.
	DefaultQuality = "Default"
)

// OutputExts lists the only extensions a normalized format may carry.
var OutputExts = []string{"mp4", "webm", "mp3", "m4a"}

// DefaultAudioRemap presents Opus and WebM audio under the "m4a" label.
var DefaultAudioRemap = map[string]string{
	"opus": "m4a",
	"webm": "m4a",
}

// Format is a normalized, client-facing stream.
type Format struct {
	Resolution string `json:"resolution"`
	Ext        string `json:"ext"`
	URL        string `json:"url"`
	Filesize   *int64 `json:"filesize"`
}

// Classification holds the two ordered format lists.
type Classification struct {
	Combined  []Format
	AudioOnly []Format
}

// Empty reports whether no format survived classification.
func (c Classification) Empty() bool {
	return len(c.Combined) == 0 && len(c.AudioOnly) == 0
}

// Options configures the extension whitelists and the audio remap step.
type Options struct {
	// VideoExts are the containers accepted for combined streams.
	VideoExts []string
	// AudioExts are the containers accepted for audio-only streams.
	AudioExts []string
	// AudioRemap renames audio extensions for display. Nil disables it.
	AudioRemap map[string]string
}

func DefaultOptions() Options {
	return Options{
		VideoExts:  []string{"mp4", "webm"},
		AudioExts:  []string{"m4a", "mp4", "opus", "webm", "mp3"},
		AudioRemap: DefaultAudioRemap,
	}
}

type ranked struct {
	Format
	rank    float64
	hasRank bool
}

type audioKey struct {
	ext     string
	quality string
}

// Classify partitions descriptors into combined and audio-only formats,
// deduplicates them (first seen wins) and orders them for presentation. It
// never fails: descriptors with unusable fields are skipped.
func Classify(descs []Descriptor, opts Options) Classification {
	var combined, audio []ranked

	for _, d := range descs {
		if !d.Eligible() {
			continue
		}
		ext := normalizeExt(d.Ext)
		switch {
		case d.HasVideo() && d.HasAudio():
			if !lo.Contains(opts.VideoExts, ext) || !IsOutputExt(ext) {
				continue
			}
			combined = append(combined, combinedFormat(d, ext))
		case !d.HasVideo() && d.HasAudio():
			if !lo.Contains(opts.AudioExts, ext) {
				continue
			}
			ext = RemapAudioExt(ext, opts.AudioRemap)
			if !IsOutputExt(ext) {
				continue
			}
			audio = append(audio, audioFormat(d, ext))
		}
	}

	combined = lo.UniqBy(combined, func(r ranked) string {
		return r.Resolution
	})
	audio = lo.UniqBy(audio, func(r ranked) audioKey {
		return audioKey{ext: r.Ext, quality: r.Resolution}
	})

	slices.SortStableFunc(combined, byRank)
	if lo.EveryBy(audio, func(r ranked) bool { return r.hasRank }) {
		slices.SortStableFunc(audio, byRank)
	}

	return Classification{
		Combined:  unrank(combined),
		AudioOnly: unrank(audio),
	}
}

// RemapAudioExt renames an audio-only extension for display. The codec is
// not changed.
func RemapAudioExt(ext string, remap map[string]string) string {
	if to, ok := remap[ext]; ok {
		return to
	}
	return ext
}

// IsOutputExt reports whether ext may appear in a normalized format.
func IsOutputExt(ext string) bool {
	return lo.Contains(OutputExts, ext)
}

func combinedFormat(d Descriptor, ext string) ranked {
	r := ranked{
		Format: Format{
			Resolution: NotAvailable,
			Ext:        ext,
			URL:        d.URL,
			Filesize:   filesize(d),
		},
		hasRank: true,
	}

	if height, ok := d.Height.Get(); ok && height > 0 {
		r.Resolution = fmt.Sprintf("%dp", height)
		r.rank = float64(height)
		return r
	}
	if note := strings.TrimSpace(d.QualityNote); note != "" {
		r.Resolution = note
		if q, ok := ParseQuality(note); ok && q.Kind == KindHeight {
			r.rank = float64(q.Value)
		}
	}
	return r
}

func audioFormat(d Descriptor, ext string) ranked {
	r := ranked{
		Format: Format{
			Resolution: DefaultQuality,
			Ext:        ext,
			URL:        d.URL,
			Filesize:   filesize(d),
		},
	}

	bitrate, hasBitrate := d.Bitrate.Get()
	hasBitrate = hasBitrate && bitrate > 0 && !math.IsInf(bitrate, 0)
	note := strings.TrimSpace(d.QualityNote)

	switch {
	case note != "":
		r.Resolution = note
	case hasBitrate:
		r.Resolution = fmt.Sprintf("%.0fkbps", bitrate)
	}

	if hasBitrate {
		r.rank, r.hasRank = bitrate, true
	} else if q, ok := ParseQuality(r.Resolution); ok && q.Kind == KindBitrate {
		r.rank, r.hasRank = float64(q.Value), true
	}
	return r
}

func filesize(d Descriptor) *int64 {
	if size, ok := d.Size.Get(); ok && size > 0 {
		return lo.ToPtr(size)
	}
	if size, ok := d.ApproxSize.Get(); ok && size > 0 {
		return lo.ToPtr(size)
	}
	return nil
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

func byRank(a, b ranked) int {
	return cmp.Compare(a.rank, b.rank)
}

func unrank(rs []ranked) []Format {
	return lo.Map(rs, func(r ranked, _ int) Format {
		return r.Format
	})
}
