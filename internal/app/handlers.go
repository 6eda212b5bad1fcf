package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/xymaxim/fmtinfo/internal/sources/vidssave"
	"github.com/xymaxim/fmtinfo/internal/sources/youtube"
	"github.com/xymaxim/fmtinfo/internal/sources/ytdlp"
)

const maxRequestBodySize = 1 << 20

var sourceAliases = map[string]string{
	"ytdlp":    ytdlp.Name,
	"yt-dlp":   ytdlp.Name,
	"youtube":  youtube.Name,
	"vidssave": vidssave.Name,
}

// ResolveSourceName maps a user-facing source name, such as "vidssave", to
// the tag a source is registered under.
func ResolveSourceName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if resolved, ok := sourceAliases[name]; ok {
		return resolved
	}
	return name
}

type rootResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (a *App) RootHandler(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, rootResponse{Status: "ok", Service: "Backend is running"})
	return nil
}

// YtdlpInfoHandler serves GET /yt/info?url=...
func (a *App) YtdlpInfoHandler(w http.ResponseWriter, r *http.Request) error {
	return a.describe(w, r, ytdlp.Name, r.URL.Query().Get("url"))
}

// VidssaveHandler serves POST /scrape/vidssave. The video URL comes from the
// "video_url" query parameter or a {"video_url": ...} JSON body.
func (a *App) VidssaveHandler(w http.ResponseWriter, r *http.Request) error {
	videoURL := r.URL.Query().Get("video_url")
	if videoURL == "" {
		var err error
		if videoURL, err = readVideoURL(r); err != nil {
			return err
		}
	}
	return a.describe(w, r, vidssave.Name, videoURL)
}

// InfoHandler serves GET /info/{source}?url=...
func (a *App) InfoHandler(w http.ResponseWriter, r *http.Request) error {
	name := ResolveSourceName(r.PathValue("source"))
	if _, ok := a.Service.Source(name); !ok {
		return &StatusError{
			Code: http.StatusNotFound,
			Msg:  fmt.Sprintf("Unknown source %q; available: %s", r.PathValue("source"), strings.Join(a.Service.Names(), ", ")),
		}
	}
	return a.describe(w, r, name, r.URL.Query().Get("url"))
}

func (a *App) describe(w http.ResponseWriter, r *http.Request, source, videoURL string) error {
	if strings.TrimSpace(videoURL) == "" {
		return &StatusError{Code: http.StatusBadRequest, Msg: "Missing video URL"}
	}
	if _, ok := a.Service.Source(source); !ok {
		return &StatusError{Code: http.StatusNotFound, Msg: fmt.Sprintf("Source %q is not enabled", source)}
	}

	resp, err := a.Service.Describe(r.Context(), source, videoURL)
	if err != nil {
		return fmt.Errorf("describing %s: %w", videoURL, err)
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

type videoURLBody struct {
	VideoURL string `json:"video_url"`
}

func readVideoURL(r *http.Request) (string, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return "", &StatusError{Code: http.StatusUnsupportedMediaType, Msg: "Expected a JSON body"}
		}
	}

	var body videoURLBody
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize)).Decode(&body)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", &StatusError{Code: http.StatusBadRequest, Msg: "Malformed JSON body"}
	}
	return body.VideoURL, nil
}
