package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/samber/lo"

	execpkg "github.com/xymaxim/fmtinfo/internal/exec"
	"github.com/xymaxim/fmtinfo/internal/formats"
	"github.com/xymaxim/fmtinfo/internal/service"
	"github.com/xymaxim/fmtinfo/internal/sources"
	"github.com/xymaxim/fmtinfo/internal/sources/vidssave"
	"github.com/xymaxim/fmtinfo/internal/sources/youtube"
	"github.com/xymaxim/fmtinfo/internal/sources/ytdlp"
)

// Globals are flags shared by every command.
type Globals struct {
	Verbose bool            `help:"Enable debug logging" short:"v"`
	Config  kong.ConfigFlag `help:"Load flag values from a JSON file" type:"path"`
}

type CommonFlags struct {
	Port int `help:"Port to listen on" short:"p" default:"8000"`
}

// SourceFlags configure the extraction sources.
type SourceFlags struct {
	Sources      []string      `help:"Sources to enable (${enum})" default:"ytdlp,youtube,vidssave" enum:"ytdlp,youtube,vidssave"`
	YtdlpPath    string        `help:"Path to the yt-dlp binary" default:"yt-dlp"`
	CookiesFile  string        `help:"Cookies file passed to yt-dlp" type:"path"`
	VidssaveURL  string        `help:"Vidssave API endpoint" default:"${vidssave_url}"`
	VidssaveHost string        `help:"Override the host sent to Vidssave (derived from the video URL by default)"`
	UserAgent    string        `help:"User agent for upstream requests"`
	Referer      string        `help:"Referer header sent to Vidssave"`
	Origin       string        `help:"Origin header sent to Vidssave"`
	Timeout      time.Duration `help:"Upstream request timeout" default:"15s"`
	Retries      int           `help:"Retries on upstream gateway errors" default:"0"`
	VideoExts    []string      `help:"Containers accepted for combined streams" default:"mp4,webm"`
	NoAudioRemap bool          `help:"Disable remapping Opus and WebM audio to m4a"`
}

// Vars provides interpolated defaults for the flag tags.
var Vars = kong.Vars{
	"vidssave_url": vidssave.DefaultEndpoint,
}

func checkYtdlp(path string) error {
	_, err := exec.LookPath(path)
	if err != nil {
		return fmt.Errorf("unable to find yt-dlp: %w", err)
	}
	return nil
}

func (f *SourceFlags) formatOptions() formats.Options {
	opts := formats.DefaultOptions()
	exts := lo.Compact(lo.Map(f.VideoExts, func(ext string, _ int) string {
		return strings.ToLower(strings.TrimSpace(ext))
	}))
	if len(exts) > 0 {
		opts.VideoExts = exts
	}
	if f.NoAudioRemap {
		opts.AudioRemap = nil
	}
	return opts
}

func (f *SourceFlags) vidssaveConfig() vidssave.Config {
	headers := vidssave.DefaultHeaders()
	for key, value := range map[string]string{
		"User-Agent": f.UserAgent,
		"Referer":    f.Referer,
		"Origin":     f.Origin,
	} {
		if value != "" {
			headers.Set(key, value)
		}
	}
	return vidssave.Config{
		Endpoint: f.VidssaveURL,
		Host:     f.VidssaveHost,
		Headers:  headers,
		Timeout:  f.Timeout,
		Retries:  f.Retries,
	}
}

// buildService creates the enabled sources. With strict set, a missing
// yt-dlp binary is an error; otherwise the source is skipped.
func (f *SourceFlags) buildService(strict bool) (*service.Service, error) {
	var srcs []sources.Source
	for _, name := range lo.Uniq(f.Sources) {
		switch name {
		case "ytdlp":
			if err := checkYtdlp(f.YtdlpPath); err != nil {
				if strict {
					return nil, err
				}
				slog.Warn("disabling yt-dlp source", "err", err)
				continue
			}
			srcs = append(srcs, &ytdlp.Fetcher{
				Runner:      execpkg.NewCommandRunner(f.YtdlpPath),
				CookiesFile: f.CookiesFile,
			})
		case "youtube":
			srcs = append(srcs, youtube.New(&http.Client{Timeout: f.Timeout}))
		case "vidssave":
			srcs = append(srcs, vidssave.New(f.vidssaveConfig()))
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}

	svc := service.New(f.formatOptions(), srcs...)
	slog.Debug("sources enabled", "names", svc.Names())
	return svc, nil
}
