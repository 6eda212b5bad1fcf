// Package vidssave extracts formats through the Vidssave scraping API.
package vidssave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/xymaxim/fmtinfo/internal/formats"
	"github.com/xymaxim/fmtinfo/internal/response"
	"github.com/xymaxim/fmtinfo/internal/sources"
	"github.com/xymaxim/fmtinfo/internal/urlutil"
)

const (
	Name = "scraped_vidssave"

	DefaultEndpoint = "https://vidssave.com/api/proxy"
	DefaultTimeout  = 15 * time.Second

	defaultFailureMessage = "Vidssave failed to process the link."
)

// DefaultHeaders returns the browser-like headers the API expects.
func DefaultHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	h.Set("Referer", "https://vidssave.com/")
	h.Set("Origin", "https://vidssave.com")
	h.Set("Sec-Ch-Ua", `"Not.A/Brand";v="99", "Chromium";v="120", "Google Chrome";v="120"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	return h
}

type Config struct {
	Endpoint string
	// Host overrides the "host" payload field; by default it is derived from
	// the video URL.
	Host    string
	Headers http.Header
	Timeout time.Duration
	Retries int
}

type Fetcher struct {
	config Config
	client *http.Client
}

// New returns a fetcher for cfg. Zero fields take their defaults.
func New(cfg Config) *Fetcher {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Headers == nil {
		cfg.Headers = DefaultHeaders()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Fetcher{
		config: cfg,
		client: newClient(cfg.Timeout, cfg.Retries),
	}
}

type payload struct {
	URL  string `json:"url"`
	Host string `json:"host"`
}

type apiResponse struct {
	Data *apiData `json:"data"`
	Msg  string   `json:"msg"`
}

type apiData struct {
	Title         string `json:"title"`
	Thumbnail     string `json:"thumbnail"`
	Duration      any    `json:"duration"`
	Views         any    `json:"views"`
	DownloadLinks []link `json:"download_links"`
	Resources     []link `json:"resources"`
	Msg           string `json:"msg"`
}

type link struct {
	Quality     any    `json:"quality"`
	Type        string `json:"type"`
	Ext         string `json:"ext"`
	Format      string `json:"format"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
	Size        any    `json:"size"`
}

func (f *Fetcher) Name() string {
	return Name
}

func (f *Fetcher) Extract(ctx context.Context, videoURL string) (*sources.Extraction, error) {
	data, err := f.fetch(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	links := data.DownloadLinks
	if len(links) == 0 {
		links = data.Resources
	}
	if len(links) == 0 {
		msg := lo.CoalesceOrEmpty(strings.TrimSpace(data.Msg), defaultFailureMessage)
		return nil, &sources.MessageError{Kind: sources.ErrNoData, Msg: msg}
	}

	return &sources.Extraction{
		Metadata: response.Metadata{
			Title:     data.Title,
			Duration:  data.Duration,
			Views:     data.Views,
			Thumbnail: data.Thumbnail,
		},
		Descriptors: lo.Map(links, func(l link, _ int) formats.Descriptor {
			return mapLink(l)
		}),
	}, nil
}

func (f *Fetcher) fetch(ctx context.Context, videoURL string) (*apiData, error) {
	host := f.config.Host
	if host == "" {
		host = urlutil.PayloadHost(videoURL)
	}
	body, err := json.Marshal(payload{URL: videoURL, Host: host})
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = f.config.Headers.Clone()
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: requesting Vidssave: %w", sources.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sources.ErrUnavailable, err)
	}

	if isHTML(resp) && resp.StatusCode < http.StatusInternalServerError {
		title := challengeTitle(respBody)
		return nil, &sources.MessageError{
			Kind: sources.ErrBlocked,
			Msg:  lo.CoalesceOrEmpty(title, "got an HTML page instead of JSON"),
		}
	}

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: Vidssave returned %s", sources.ErrBlocked, resp.Status)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: Vidssave returned %s", sources.ErrUnavailable, resp.Status)
	}

	var decoded apiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", sources.ErrUnavailable, err)
	}
	if decoded.Data == nil {
		msg := lo.CoalesceOrEmpty(strings.TrimSpace(decoded.Msg), defaultFailureMessage)
		return nil, &sources.MessageError{Kind: sources.ErrNoData, Msg: msg}
	}
	return decoded.Data, nil
}

var audioExts = []string{"mp3", "m4a", "opus", "aac"}

// mapLink translates one Vidssave link. The API reports no codecs: video
// containers are muxed streams, audio containers are audio-only.
func mapLink(l link) formats.Descriptor {
	ext := strings.ToLower(strings.TrimSpace(lo.CoalesceOrEmpty(l.Ext, l.Format)))
	kind := strings.ToLower(strings.TrimSpace(l.Type))

	d := formats.Descriptor{
		Ext:         ext,
		URL:         strings.TrimSpace(lo.CoalesceOrEmpty(l.URL, l.DownloadURL)),
		QualityNote: lo.CoalesceOrEmpty(strings.TrimSpace(cast.ToString(l.Quality)), l.Type),
		VideoCodec:  formats.NoCodec,
		AudioCodec:  formats.NoCodec,
	}
	if size, err := cast.ToInt64E(l.Size); err == nil {
		d.Size = formats.Positive(size)
	}

	switch {
	case lo.Contains(audioExts, ext) || kind == "audio":
		d.AudioCodec = formats.UnknownCodec
	case ext == "mp4" || ext == "webm":
		d.VideoCodec, d.AudioCodec = formats.UnknownCodec, formats.UnknownCodec
	}
	return d
}

func isHTML(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/html"
}

// challengeTitle returns the <title> of an HTML page, typically a bot
// challenge served in place of the API response.
func challengeTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

var _ sources.Source = (*Fetcher)(nil)
