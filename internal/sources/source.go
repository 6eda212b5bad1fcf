// Package sources defines the adapters that fetch raw stream descriptors
// and metadata for a video URL.
package sources

import (
	"context"
	"errors"

	"github.com/xymaxim/fmtinfo/internal/formats"
	"github.com/xymaxim/fmtinfo/internal/response"
)

var (
	// ErrInvalidURL means the requested URL is missing or cannot be handled.
	ErrInvalidURL = errors.New("invalid video URL")
	// ErrNoData means the upstream answered but yielded no usable formats.
	ErrNoData = errors.New("no usable data")
	// ErrBlocked means the upstream rejected the request.
	ErrBlocked = errors.New("upstream blocked the request")
	// ErrUnavailable means the upstream could not be reached or failed.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Extraction is the adapter output: metadata plus descriptors in the order
// the upstream reported them.
type Extraction struct {
	Metadata    response.Metadata
	Descriptors []formats.Descriptor
}

// Source fetches raw data for a video URL.
type Source interface {
	// Name is the tag reported in the response "source" field.
	Name() string
	Extract(ctx context.Context, videoURL string) (*Extraction, error)
}

// Message returns the upstream-provided detail of err, if it carries one.
func Message(err error) string {
	var m *MessageError
	if errors.As(err, &m) {
		return m.Msg
	}
	return ""
}

// MessageError attaches an upstream message to one of the sentinel errors.
type MessageError struct {
	Kind error
	Msg  string
}

func (e *MessageError) Error() string {
	return e.Kind.Error() + ": " + e.Msg
}

func (e *MessageError) Unwrap() error {
	return e.Kind
}
