package formats_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xymaxim/fmtinfo/internal/formats"
)

func TestParseQuality(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		label  string
		want   formats.Quality
		wantOK bool
	}{
		{
			name:   "height",
			label:  "720p",
			want:   formats.Quality{Kind: formats.KindHeight, Value: 720},
			wantOK: true,
		},
		{
			name:   "height with frame rate",
			label:  "1080p60",
			want:   formats.Quality{Kind: formats.KindHeight, Value: 1080},
			wantOK: true,
		},
		{
			name:   "height with trailing note",
			label:  " 2160p HDR ",
			want:   formats.Quality{Kind: formats.KindHeight, Value: 2160},
			wantOK: true,
		},
		{
			name:   "upper case cinema label",
			label:  "4K",
			want:   formats.Quality{Kind: formats.KindHeight, Value: 2160},
			wantOK: true,
		},
		{
			name:   "bitrate",
			label:  "128kbps",
			want:   formats.Quality{Kind: formats.KindBitrate, Value: 128},
			wantOK: true,
		},
		{
			name:   "bitrate with space",
			label:  "320 Kbps",
			want:   formats.Quality{Kind: formats.KindBitrate, Value: 320},
			wantOK: true,
		},
		{
			name:   "bare number",
			label:  "480",
			want:   formats.Quality{Kind: formats.KindHeight, Value: 480},
			wantOK: true,
		},
		{name: "unknown cinema label", label: "3K", wantOK: false},
		{name: "free text", label: "medium", wantOK: false},
		{name: "placeholder", label: "N/A", wantOK: false},
		{name: "number with unknown suffix", label: "480i", wantOK: false},
		{name: "empty", label: "", wantOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := formats.ParseQuality(tc.label)
			if ok != tc.wantOK {
				t.Fatalf("ParseQuality(%q) ok = %v, want %v", tc.label, ok, tc.wantOK)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseQuality(%q) mismatch (-want +got):\n%s", tc.label, diff)
			}
		})
	}
}
