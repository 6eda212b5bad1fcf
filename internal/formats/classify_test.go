package formats_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xymaxim/fmtinfo/internal/formats"
)

func progressive(ext string, height int, url string) formats.Descriptor {
	return formats.Descriptor{
		VideoCodec: "avc1.42001E",
		AudioCodec: "mp4a.40.2",
		Ext:        ext,
		URL:        url,
		Height:     mo.Some(height),
		Protocol:   "https",
	}
}

func audioOnly(ext, note string, abr float64, url string) formats.Descriptor {
	d := formats.Descriptor{
		VideoCodec:  formats.NoCodec,
		AudioCodec:  "opus",
		Ext:         ext,
		URL:         url,
		QualityNote: note,
		Protocol:    "https",
	}
	if abr > 0 {
		d.Bitrate = mo.Some(abr)
	}
	return d
}

func resolutions(fs []formats.Format) []string {
	return lo.Map(fs, func(f formats.Format, _ int) string { return f.Resolution })
}

func urls(fs []formats.Format) []string {
	return lo.Map(fs, func(f formats.Format, _ int) string { return f.URL })
}

func TestClassify_Empty(t *testing.T) {
	t.Parallel()
	got := formats.Classify(nil, formats.DefaultOptions())
	assert.NotNil(t, got.Combined)
	assert.NotNil(t, got.AudioOnly)
	assert.Empty(t, got.Combined)
	assert.Empty(t, got.AudioOnly)
	assert.True(t, got.Empty())
}

func TestClassify_Partitions(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		progressive("mp4", 360, "https://a/18"),
		{
			VideoCodec: "vp9",
			AudioCodec: formats.NoCodec,
			Ext:        "webm",
			URL:        "https://a/248",
			Height:     mo.Some(1080),
		},
		audioOnly("m4a", "medium", 129.5, "https://a/140"),
		{
			VideoCodec: formats.NoCodec,
			AudioCodec: formats.NoCodec,
			Ext:        "mhtml",
			URL:        "https://a/sb0",
		},
	}

	got := formats.Classify(descs, formats.DefaultOptions())

	assert.Equal(t, []string{"https://a/18"}, urls(got.Combined))
	assert.Equal(t, []string{"https://a/140"}, urls(got.AudioOnly))
}

func TestClassify_Eligibility(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		protocol string
		url      string
		want     bool
	}{
		{name: "https", protocol: "https", url: "https://a/1", want: true},
		{name: "http upper case", protocol: "HTTP", url: "http://a/1", want: true},
		{name: "absent protocol", protocol: "", url: "https://a/1", want: true},
		{name: "hls", protocol: "hls", url: "https://a/1", want: false},
		{name: "m3u8 native", protocol: "m3u8_native", url: "https://a/1", want: false},
		{name: "dash segments", protocol: "http_dash_segments", url: "https://a/1", want: false},
		{name: "empty url", protocol: "https", url: "", want: false},
		{name: "blank url", protocol: "https", url: "  ", want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			video := progressive("mp4", 720, tc.url)
			video.Protocol = tc.protocol
			audio := audioOnly("m4a", "medium", 128, tc.url)
			audio.Protocol = tc.protocol

			got := formats.Classify(
				[]formats.Descriptor{video, audio},
				formats.DefaultOptions(),
			)

			assert.Equal(t, tc.want, len(got.Combined) == 1, "combined")
			assert.Equal(t, tc.want, len(got.AudioOnly) == 1, "audio only")
		})
	}
}

func TestClassify_VideoExtensionWhitelist(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		progressive("mp4", 360, "https://a/mp4"),
		progressive("webm", 480, "https://a/webm"),
		progressive("3gp", 144, "https://a/3gp"),
		progressive("MP4", 720, "https://a/upper"),
	}

	t.Run("default", func(t *testing.T) {
		t.Parallel()
		got := formats.Classify(descs, formats.DefaultOptions())
		assert.Equal(
			t,
			[]string{"https://a/mp4", "https://a/webm", "https://a/upper"},
			urls(got.Combined),
		)
	})

	t.Run("mp4 only", func(t *testing.T) {
		t.Parallel()
		opts := formats.DefaultOptions()
		opts.VideoExts = []string{"mp4"}
		got := formats.Classify(descs, opts)
		assert.Equal(t, []string{"https://a/mp4", "https://a/upper"}, urls(got.Combined))
	})

	t.Run("non-output extension is never emitted", func(t *testing.T) {
		t.Parallel()
		opts := formats.DefaultOptions()
		opts.VideoExts = []string{"mp4", "3gp"}
		got := formats.Classify(descs, opts)
		for _, f := range got.Combined {
			assert.True(t, formats.IsOutputExt(f.Ext), f.Ext)
		}
	})
}

func TestClassify_CombinedDedupAndOrder(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		progressive("mp4", 720, "https://a/22"),
		progressive("mp4", 360, "https://a/18"),
		progressive("webm", 720, "https://a/45"),
		progressive("mp4", 1080, "https://a/37"),
		progressive("webm", 360, "https://a/43"),
	}

	got := formats.Classify(descs, formats.DefaultOptions())

	assert.Equal(t, []string{"360p", "720p", "1080p"}, resolutions(got.Combined))
	assert.Equal(
		t,
		[]string{"https://a/18", "https://a/22", "https://a/37"},
		urls(got.Combined),
		"first seen entry per resolution should win",
	)
}

func TestClassify_CombinedResolutionFallbacks(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		{
			VideoCodec:  formats.UnknownCodec,
			AudioCodec:  formats.UnknownCodec,
			Ext:         "mp4",
			URL:         "https://a/note",
			QualityNote: "480p",
		},
		{
			VideoCodec: formats.UnknownCodec,
			AudioCodec: formats.UnknownCodec,
			Ext:        "mp4",
			URL:        "https://a/none",
		},
		{
			VideoCodec: formats.UnknownCodec,
			AudioCodec: formats.UnknownCodec,
			Ext:        "mp4",
			URL:        "https://a/none-again",
		},
		{
			VideoCodec:  formats.UnknownCodec,
			AudioCodec:  formats.UnknownCodec,
			Ext:         "mp4",
			URL:         "https://a/hd",
			QualityNote: "HD",
		},
		progressive("mp4", 240, "https://a/240"),
	}

	got := formats.Classify(descs, formats.DefaultOptions())

	// Unranked labels sort first and keep their relative order.
	assert.Equal(t, []string{"N/A", "HD", "240p", "480p"}, resolutions(got.Combined))
	assert.Equal(
		t,
		[]string{"https://a/none", "https://a/hd", "https://a/240", "https://a/note"},
		urls(got.Combined),
	)
}

func TestClassify_AudioRemapAndDedup(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		audioOnly("m4a", "medium", 129.5, "https://a/140"),
		audioOnly("webm", "medium", 135, "https://a/251"),
		audioOnly("webm", "low", 50, "https://a/249"),
		audioOnly("opus", "", 70, "https://a/250"),
		audioOnly("flac", "lossless", 900, "https://a/flac"),
	}

	t.Run("default remap", func(t *testing.T) {
		t.Parallel()
		got := formats.Classify(descs, formats.DefaultOptions())
		assert.Equal(
			t,
			[]string{"https://a/249", "https://a/250", "https://a/140"},
			urls(got.AudioOnly),
		)
		assert.Equal(t, []string{"low", "70kbps", "medium"}, resolutions(got.AudioOnly))
		for _, f := range got.AudioOnly {
			assert.Equal(t, "m4a", f.Ext)
		}
	})

	t.Run("remap disabled", func(t *testing.T) {
		t.Parallel()
		opts := formats.DefaultOptions()
		opts.AudioRemap = nil
		got := formats.Classify(descs, opts)
		// Opus is not an output extension without the remap.
		assert.Equal(
			t,
			[]string{"https://a/249", "https://a/140", "https://a/251"},
			urls(got.AudioOnly),
		)
	})
}

func TestClassify_AudioOrderPreservedWithoutBitrate(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		audioOnly("mp3", "320kbps", 0, "https://a/320"),
		audioOnly("m4a", "", 0, "https://a/default"),
		audioOnly("mp3", "128kbps", 0, "https://a/128"),
	}

	got := formats.Classify(descs, formats.DefaultOptions())

	assert.Equal(
		t,
		[]string{"https://a/320", "https://a/default", "https://a/128"},
		urls(got.AudioOnly),
	)
	assert.Equal(t, []string{"320kbps", "Default", "128kbps"}, resolutions(got.AudioOnly))
}

func TestClassify_AudioSortedByLabelBitrate(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		audioOnly("mp3", "320kbps", 0, "https://a/320"),
		audioOnly("mp3", "128kbps", 0, "https://a/128"),
		audioOnly("m4a", "192kbps", 0, "https://a/192"),
	}

	got := formats.Classify(descs, formats.DefaultOptions())

	assert.Equal(t, []string{"128kbps", "192kbps", "320kbps"}, resolutions(got.AudioOnly))
}

func TestClassify_Filesize(t *testing.T) {
	t.Parallel()
	exact := progressive("mp4", 360, "https://a/exact")
	exact.Size = mo.Some[int64](1000)
	exact.ApproxSize = mo.Some[int64](999)
	approx := progressive("mp4", 720, "https://a/approx")
	approx.ApproxSize = mo.Some[int64](2000)
	unknown := progressive("mp4", 1080, "https://a/unknown")

	got := formats.Classify(
		[]formats.Descriptor{exact, approx, unknown},
		formats.DefaultOptions(),
	)

	require.Len(t, got.Combined, 3)
	assert.Equal(t, lo.ToPtr[int64](1000), got.Combined[0].Filesize)
	assert.Equal(t, lo.ToPtr[int64](2000), got.Combined[1].Filesize)
	assert.Nil(t, got.Combined[2].Filesize)
}

func TestClassify_Invariants(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		progressive("mp4", 720, "https://a/1"),
		progressive("webm", 720, "https://a/2"),
		progressive("mp4", 144, "https://a/3"),
		audioOnly("m4a", "medium", 129, "https://a/4"),
		audioOnly("m4a", "medium", 130, "https://a/5"),
		audioOnly("webm", "low", 48, "https://a/6"),
		{VideoCodec: "vp9", AudioCodec: "", Ext: "webm", URL: "https://a/7"},
		{VideoCodec: "", AudioCodec: "", Ext: "mp4", URL: "https://a/8"},
	}

	got := formats.Classify(descs, formats.DefaultOptions())

	seen := map[string]bool{}
	for _, f := range got.Combined {
		assert.False(t, seen[f.Resolution], "duplicate resolution %s", f.Resolution)
		seen[f.Resolution] = true
		assert.True(t, formats.IsOutputExt(f.Ext))
	}
	seenAudio := map[[2]string]bool{}
	for _, f := range got.AudioOnly {
		key := [2]string{f.Ext, f.Resolution}
		assert.False(t, seenAudio[key], "duplicate audio pair %v", key)
		seenAudio[key] = true
	}
	assert.Empty(
		t,
		lo.Intersect(urls(got.Combined), urls(got.AudioOnly)),
		"no format should be in both lists",
	)
	assert.NotContains(t, urls(got.AudioOnly), "https://a/7")
	assert.NotContains(t, urls(got.Combined), "https://a/8")
}

// asDescriptors turns classifier output back into descriptors the way a
// source reporting only labels would.
func asDescriptors(c formats.Classification) []formats.Descriptor {
	var descs []formats.Descriptor
	for _, f := range c.Combined {
		descs = append(descs, formats.Descriptor{
			VideoCodec:  formats.UnknownCodec,
			AudioCodec:  formats.UnknownCodec,
			Ext:         f.Ext,
			URL:         f.URL,
			QualityNote: f.Resolution,
		})
	}
	for _, f := range c.AudioOnly {
		descs = append(descs, formats.Descriptor{
			VideoCodec:  formats.NoCodec,
			AudioCodec:  formats.UnknownCodec,
			Ext:         f.Ext,
			URL:         f.URL,
			QualityNote: f.Resolution,
		})
	}
	return descs
}

func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()
	descs := []formats.Descriptor{
		progressive("mp4", 1080, "https://a/37"),
		progressive("mp4", 360, "https://a/18"),
		progressive("webm", 360, "https://a/43"),
		{
			VideoCodec: formats.UnknownCodec,
			AudioCodec: formats.UnknownCodec,
			Ext:        "mp4",
			URL:        "https://a/na",
		},
		audioOnly("webm", "medium", 160, "https://a/251"),
		audioOnly("m4a", "medium", 129, "https://a/140"),
		audioOnly("webm", "low", 50, "https://a/249"),
		audioOnly("mp3", "", 320, "https://a/mp3"),
	}
	opts := formats.DefaultOptions()

	first := formats.Classify(descs, opts)
	second := formats.Classify(asDescriptors(first), opts)

	assert.Equal(t, first.Combined, second.Combined)
	assert.Equal(t, first.AudioOnly, second.AudioOnly)
}

func TestRemapAudioExt(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "m4a", formats.RemapAudioExt("opus", formats.DefaultAudioRemap))
	assert.Equal(t, "m4a", formats.RemapAudioExt("webm", formats.DefaultAudioRemap))
	assert.Equal(t, "mp3", formats.RemapAudioExt("mp3", formats.DefaultAudioRemap))
	assert.Equal(t, "opus", formats.RemapAudioExt("opus", nil))
}
