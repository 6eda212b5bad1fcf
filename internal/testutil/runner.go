package testutil

import (
	"context"
	"sync"

	"github.com/xymaxim/fmtinfo/internal/exec"
)

// FakeRunner is an exec.Runner returning canned output. It records the
// arguments of every call.
type FakeRunner struct {
	Stdout []byte
	Stderr []byte
	Err    error

	mu    sync.Mutex
	calls [][]string
}

func (r *FakeRunner) Run(ctx context.Context, args ...string) error {
	_, err := r.RunWith(ctx, nil, args...)
	return err
}

func (r *FakeRunner) RunWith(
	ctx context.Context,
	_ []exec.Option,
	args ...string,
) (*exec.RunResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, args)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &exec.RunResult{Stdout: r.Stdout, Stderr: r.Stderr}, r.Err
}

// Calls returns the arguments of every call so far.
func (r *FakeRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}
