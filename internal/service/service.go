// Package service runs one extraction end to end: validate the URL, fetch
// from a source, classify the descriptors and assemble the response.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/xymaxim/fmtinfo/internal/formats"
	"github.com/xymaxim/fmtinfo/internal/response"
	"github.com/xymaxim/fmtinfo/internal/sources"
	"github.com/xymaxim/fmtinfo/internal/urlutil"
)

type Service struct {
	sources map[string]sources.Source
	options formats.Options
}

// New registers srcs under their names. A later source replaces an earlier
// one with the same name.
func New(opts formats.Options, srcs ...sources.Source) *Service {
	s := &Service{
		sources: make(map[string]sources.Source, len(srcs)),
		options: opts,
	}
	for _, src := range srcs {
		s.sources[src.Name()] = src
	}
	return s
}

func (s *Service) Source(name string) (sources.Source, bool) {
	src, ok := s.sources[name]
	return src, ok
}

// Names lists the registered sources in sorted order.
func (s *Service) Names() []string {
	names := lo.Keys(s.sources)
	slices.Sort(names)
	return names
}

// Describe extracts videoURL with the named source and returns the
// normalized response. It fails with sources.ErrNoData when no format
// survives classification.
func (s *Service) Describe(ctx context.Context, name, videoURL string) (*response.Response, error) {
	src, ok := s.Source(name)
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}

	videoURL, err := urlutil.ValidateVideoURL(videoURL)
	if err != nil {
		msg := err.Error()
		var urlErr *urlutil.InvalidURLError
		if errors.As(err, &urlErr) {
			msg = urlErr.Reason
		}
		return nil, &sources.MessageError{Kind: sources.ErrInvalidURL, Msg: msg}
	}

	extraction, err := src.Extract(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("extracting with %s: %w", name, err)
	}

	c := formats.Classify(extraction.Descriptors, s.options)
	slog.Debug(
		"classified formats",
		"source", name,
		"descriptors", len(extraction.Descriptors),
		"combined", len(c.Combined),
		"audio", len(c.AudioOnly),
	)
	if c.Empty() {
		return nil, &sources.MessageError{
			Kind: sources.ErrNoData,
			Msg:  "no downloadable formats found",
		}
	}

	resp := response.Assemble(extraction.Metadata, c, src.Name())
	return &resp, nil
}
