package response_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xymaxim/fmtinfo/internal/formats"
	"github.com/xymaxim/fmtinfo/internal/response"
)

func TestAssemble_EmptyInput(t *testing.T) {
	t.Parallel()
	c := formats.Classify(nil, formats.DefaultOptions())

	got := response.Assemble(response.Metadata{}, c, "ytdlp")

	want := response.Response{
		Title:        "Untitled Video",
		Duration:     "N/A",
		Views:        "N/A",
		Thumbnails:   []response.Thumbnail{},
		VideoFormats: []formats.Format{},
		AudioFormats: []formats.Format{},
		Source:       "ytdlp",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_JSONShape(t *testing.T) {
	t.Parallel()
	got := response.Assemble(
		response.Metadata{
			Title:     "  Some video ",
			Duration:  3661,
			Views:     2_300_000,
			Thumbnail: "https://i/hq.jpg",
		},
		formats.Classification{
			Combined: []formats.Format{
				{Resolution: "360p", Ext: "mp4", URL: "https://a/18"},
			},
		},
		"scraped_vidssave",
	)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"title": "Some video",
		"duration": "1:01:01",
		"views": "2.3M",
		"thumbnails": [{"url": "https://i/hq.jpg", "resolution": "HQ"}],
		"video_formats": [
			{"resolution": "360p", "ext": "mp4", "url": "https://a/18", "filesize": null}
		],
		"audio_formats": [],
		"source": "scraped_vidssave"
	}`, string(b))
}

func TestBuildThumbnails(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		meta     response.Metadata
		expected []response.Thumbnail
	}{
		{
			name:     "nothing known",
			meta:     response.Metadata{},
			expected: []response.Thumbnail{},
		},
		{
			name:     "single url",
			meta:     response.Metadata{Thumbnail: "https://i/a.jpg"},
			expected: []response.Thumbnail{{URL: "https://i/a.jpg", Resolution: "HQ"}},
		},
		{
			name: "candidates sorted by descending width",
			meta: response.Metadata{
				Thumbnail: "https://i/fallback.jpg",
				Thumbnails: []response.ThumbnailCandidate{
					{URL: "https://i/small.jpg", Width: 120, Height: 90},
					{URL: "https://i/unknown.jpg"},
					{URL: "https://i/large.jpg", Width: 1280, Height: 720},
					{URL: ""},
					{URL: "https://i/medium.jpg", Width: 480, Height: 360},
				},
			},
			expected: []response.Thumbnail{
				{URL: "https://i/large.jpg", Resolution: "1280x720"},
				{URL: "https://i/medium.jpg", Resolution: "480x360"},
				{URL: "https://i/small.jpg", Resolution: "120x90"},
				{URL: "https://i/unknown.jpg", Resolution: "HQ"},
			},
		},
		{
			name: "only blank candidates",
			meta: response.Metadata{
				Thumbnail:  "https://i/fallback.jpg",
				Thumbnails: []response.ThumbnailCandidate{{URL: " "}},
			},
			expected: []response.Thumbnail{{URL: "https://i/fallback.jpg", Resolution: "HQ"}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, response.BuildThumbnails(tc.meta))
		})
	}
}
