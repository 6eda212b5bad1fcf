package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultPayloadHost is used when the video URL names no known host.
const DefaultPayloadHost = "youtube.com"

var ErrInvalidVideoURL = errors.New("invalid video URL")

// InvalidURLError explains why a video URL was rejected. It matches
// ErrInvalidVideoURL.
type InvalidURLError struct {
	Reason string
}

func (e *InvalidURLError) Error() string {
	return ErrInvalidVideoURL.Error() + ": " + e.Reason
}

func (e *InvalidURLError) Is(target error) bool {
	return target == ErrInvalidVideoURL
}

// ValidateVideoURL checks that raw is an absolute http(s) URL and returns it
// normalized.
func ValidateVideoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &InvalidURLError{Reason: "empty"}
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", &InvalidURLError{Reason: err.Error()}
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", &InvalidURLError{Reason: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return "", &InvalidURLError{Reason: "missing host"}
	}
	return parsed.String(), nil
}

// PayloadHost returns the registrable site name of a video URL, such as
// "youtube.com" for "https://m.youtube.com/watch?v=..." and for "youtu.be"
// short links.
func PayloadHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return DefaultPayloadHost
	}
	host := strings.ToLower(u.Hostname())
	if host == "youtu.be" || strings.HasSuffix(host, ".youtube.com") {
		return DefaultPayloadHost
	}
	for _, prefix := range []string{"www.", "m.", "mobile."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}

func FormatServerAddress(addr string) string {
	parts := strings.Split(addr, ":")
	host, port := parts[0], parts[len(parts)-1]
	if host == "" {
		return "http://localhost:" + port
	}
	return "http://" + addr
}
