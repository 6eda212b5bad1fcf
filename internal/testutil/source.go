package testutil

import (
	"context"
	"sync"

	"github.com/xymaxim/fmtinfo/internal/sources"
)

// FakeSource is a sources.Source returning a canned extraction or error.
type FakeSource struct {
	SourceName string
	Extraction *sources.Extraction
	Err        error

	mu    sync.Mutex
	calls []string
}

func (s *FakeSource) Name() string {
	return s.SourceName
}

func (s *FakeSource) Extract(ctx context.Context, videoURL string) (*sources.Extraction, error) {
	s.mu.Lock()
	s.calls = append(s.calls, videoURL)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Extraction == nil {
		return &sources.Extraction{}, nil
	}
	return s.Extraction, nil
}

// Calls returns the URLs passed to Extract so far.
func (s *FakeSource) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
