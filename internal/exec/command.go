package exec

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	execpkg "os/exec"
	"path/filepath"
	"sync"
)

type StreamMode int

const (
	StreamRaw StreamMode = iota
	StreamLines
)

// Runner defines the interface for executing commands.
type Runner interface {
	Run(ctx context.Context, args ...string) error
	RunWith(ctx context.Context, options []Option, args ...string) (*RunResult, error)
}

// RunResult contains the captured output from a command.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// RunConfig configures command execution.
type RunConfig struct {
	Stdin         io.Reader
	OnStdout      func([]byte)
	OnStderr      func([]byte)
	StdoutMode    StreamMode
	StderrMode    StreamMode
	CaptureOutput bool
	stdout        *bytes.Buffer
	stderr        *bytes.Buffer
}

// Option is a functional option for configuring RunConfig.
type Option func(*RunConfig)

// WithStdin sets an io.Reader as stdin for the command.
func WithStdin(r io.Reader) Option {
	return func(o *RunConfig) {
		o.Stdin = r
	}
}

// WithQuiet captures stdout and stderr instead of logging them.
func WithQuiet() Option {
	return func(o *RunConfig) {
		o.CaptureOutput = true
		o.stdout = &bytes.Buffer{}
		o.stderr = &bytes.Buffer{}
		o.StdoutMode = StreamRaw
		o.StderrMode = StreamRaw
		o.OnStdout = func(chunk []byte) { o.stdout.Write(chunk) }
		o.OnStderr = func(chunk []byte) { o.stderr.Write(chunk) }
	}
}

// WithStdoutMode sets the stream mode for stdout.
func WithStdoutMode(mode StreamMode) Option {
	return func(o *RunConfig) {
		o.StdoutMode = mode
	}
}

// WithCallbacks sets custom handlers for both stdout and stderr lines.
func WithCallbacks(onStdout, onStderr func([]byte)) Option {
	return func(o *RunConfig) {
		o.OnStdout = onStdout
		o.OnStderr = onStderr
	}
}

// CommandRunner executes actual commands.
type CommandRunner struct {
	Path string
	Name string
}

// NewCommandRunner creates a new CommandRunner with binary path.
func NewCommandRunner(path string) *CommandRunner {
	return &CommandRunner{Path: path, Name: filepath.Base(path)}
}

// Run executes the command with the given arguments and logs its output.
func (r *CommandRunner) Run(ctx context.Context, args ...string) error {
	_, err := r.RunWith(ctx, nil, args...)
	return err
}

// RunWith executes the command with functional options and returns captured
// output if requested. The process is killed when ctx is done.
func (r *CommandRunner) RunWith(
	ctx context.Context,
	options []Option,
	args ...string,
) (*RunResult, error) {
	config := RunConfig{
		OnStdout:   r.LogCallback("stdout"),
		OnStderr:   r.LogCallback("stderr"),
		StdoutMode: StreamLines,
		StderrMode: StreamLines,
	}

	for _, o := range options {
		o(&config)
	}

	err := r.runWithConfig(ctx, config, args...)

	var result *RunResult
	if config.CaptureOutput {
		result = &RunResult{
			Stdout: config.stdout.Bytes(),
			Stderr: config.stderr.Bytes(),
		}
	}

	return result, err
}

// LogCallback returns a handler writing each non-empty line at debug level.
func (r *CommandRunner) LogCallback(stream string) func([]byte) {
	return func(b []byte) {
		line := bytes.TrimRight(b, "\r\n")
		if len(line) == 0 {
			return
		}
		slog.Debug(r.Name, "stream", stream, "line", string(line))
	}
}

func (r *CommandRunner) runWithConfig(ctx context.Context, config RunConfig, args ...string) error {
	cmd := execpkg.CommandContext(ctx, r.Path, args...) // #nosec: G204

	if config.Stdin != nil {
		cmd.Stdin = config.Stdin
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting command: %w", err)
	}

	// Pipes must be drained before Wait closes them.
	var wg sync.WaitGroup
	handle := func(p io.ReadCloser, h func([]byte), mode StreamMode) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch {
			case h == nil:
				io.Copy(io.Discard, p) //nolint:errcheck
			case mode == StreamRaw:
				streamRaw(p, h)
			default:
				streamLines(p, h)
			}
		}()
	}

	handle(stdout, config.OnStdout, config.StdoutMode)
	handle(stderr, config.OnStderr, config.StderrMode)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("running command: %w", ctxErr)
		}
		return fmt.Errorf("running command: %w", err)
	}
	return nil
}

func streamRaw(pipe io.ReadCloser, handler func([]byte)) {
	buf := make([]byte, 4096)
	for {
		n, err := pipe.Read(buf)
		if n > 0 {
			handler(buf[:n])
		}
		if err != nil {
			break
		}
	}
}

func streamLines(pipe io.ReadCloser, handler func([]byte)) {
	reader := bufio.NewReader(pipe)
	var buf bytes.Buffer
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if buf.Len() > 0 {
				handler(buf.Bytes())
			}
			break
		}
		switch b {
		case '\n':
			handler(buf.Bytes())
			buf.Reset()
		case '\r':
			handler(append(buf.Bytes(), '\r'))
			buf.Reset()
		default:
			buf.WriteByte(b)
		}
	}
}
