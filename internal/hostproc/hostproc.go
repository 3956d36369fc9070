// Package hostproc runs the scripting host as a child process that speaks
// newline delimited JSON over stdin and stdout.
package hostproc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/sieve"
	"github.com/ItsNotGoodName/x-canvasview/internal/window"
)

// MaxLine bounds a single reply line.
const MaxLine = 64 << 20

// DefaultCloseTimeout is how long Close waits for the host to exit on its
// own after stdin is closed.
const DefaultCloseTimeout = 2 * time.Second

var (
	ErrHostExited = errors.New("host exited")
	ErrHostBroken = errors.New("host connection broken")
)

type Config struct {
	Command []string
	Dir     string
	Env     []string
	// Timeout bounds one round trip. Zero waits forever.
	Timeout time.Duration
}

type result struct {
	line []byte
	err  error
}

// Host is a window.Host backed by a child process. It is not safe for
// concurrent use.
type Host struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	enc     *json.Encoder
	lines   <-chan result
	closing chan struct{}
	waitC   chan struct{}
	waitErr error
	timeout time.Duration
	dec     decoder
	log     *slog.Logger
	broken  error
}

func Start(cfg Config) (*Host, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("no host command")
	}

	log := slog.With("package", "hostproc", "command", cfg.Command[0])

	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(cmd.Environ(), cfg.Env...)
	}
	cmd.Stderr = NewLogWriter(log)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start host: %w", err)
	}
	log.Debug("Started host", "pid", cmd.Process.Pid)

	h := &Host{
		cmd:     cmd,
		stdin:   stdin,
		enc:     json.NewEncoder(stdin),
		closing: make(chan struct{}),
		waitC:   make(chan struct{}),
		timeout: cfg.Timeout,
		dec:     decoder{log: log},
		log:     log,
	}
	lines, readDone := readLines(stdout, h.closing)
	h.lines = lines
	go func() {
		// Wait closes stdout, so it must not run before reading stops
		<-readDone
		h.waitErr = cmd.Wait()
		close(h.waitC)
	}()
	return h, nil
}

// readLines reads stdout until it closes or closing is closed.
func readLines(r io.Reader, closing <-chan struct{}) (<-chan result, <-chan struct{}) {
	c := make(chan result)
	done := make(chan struct{})
	go func() {
		defer close(done)
		br := bufio.NewReaderSize(r, 64<<10)
		for {
			line, err := readLine(br)
			select {
			case c <- result{line: line, err: err}:
			case <-closing:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return c, done
}

func readLine(br *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > MaxLine {
			return nil, fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedReply, MaxLine)
		}
		if !isPrefix {
			return line, nil
		}
	}
}

func (h *Host) Dispatch(ctx context.Context, batch sieve.Batch) (window.Reply, error) {
	return h.roundTrip(ctx, Request{Type: TypeDispatch, Args: batch.Values()})
}

func (h *Host) Animate(ctx context.Context) (window.Reply, error) {
	return h.roundTrip(ctx, Request{Type: TypeAnimate})
}

func (h *Host) roundTrip(ctx context.Context, req Request) (window.Reply, error) {
	if h.broken != nil {
		return nil, h.broken
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if err := h.enc.Encode(req); err != nil {
		return nil, h.fail(fmt.Errorf("failed to write request: %w", err))
	}

	select {
	case <-ctx.Done():
		return nil, h.fail(ctx.Err())
	case res, ok := <-h.lines:
		if !ok || res.err != nil {
			if errors.Is(res.err, ErrMalformedReply) {
				return nil, h.fail(res.err)
			}
			if res.err == nil {
				res.err = io.EOF
			}
			return nil, h.fail(h.exitError(res.err))
		}
		reply, err := h.dec.decode(res.line)
		if err != nil {
			return nil, h.fail(err)
		}
		return reply, nil
	}
}

// fail marks the host unusable. Later round trips return the same error.
func (h *Host) fail(err error) error {
	h.broken = fmt.Errorf("%w: %w", ErrHostBroken, err)
	return h.broken
}

func (h *Host) exitError(readErr error) error {
	select {
	case <-h.waitC:
	case <-time.After(DefaultCloseTimeout):
		return readErr
	}
	if h.waitErr != nil {
		return fmt.Errorf("%w: %w", ErrHostExited, h.waitErr)
	}
	return ErrHostExited
}

// Close ends the host. It closes stdin first and kills the process if it does
// not exit in time.
func (h *Host) Close() error {
	close(h.closing)
	err := h.stdin.Close()

	select {
	case <-h.waitC:
	case <-time.After(DefaultCloseTimeout):
		h.log.Warn("Killing host")
		err = errors.Join(err, h.cmd.Process.Kill())
		<-h.waitC
	}

	var exitErr *exec.ExitError
	if h.waitErr != nil && !errors.As(h.waitErr, &exitErr) {
		err = errors.Join(err, h.waitErr)
	}
	return err
}
