package feedview

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"snakewatch/internal/crawler"
	"snakewatch/internal/services"
)

// DefaultOpTimeout bounds a single request/response exchange.
const DefaultOpTimeout = 2 * time.Minute

type request struct {
	Op   string `json:"op"`
	URL  string `json:"url,omitempty"`
	Keep int    `json:"keep,omitempty"`
}

type response struct {
	OK       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	Articles int      `json:"articles,omitempty"`
	Added    int      `json:"added,omitempty"`
	Hrefs    []string `json:"hrefs,omitempty"`
}

// Option customizes a driver process.
type Option func(*Process)

// WithOpTimeout bounds each request/response exchange.
func WithOpTimeout(d time.Duration) Option {
	return func(p *Process) { p.opTimeout = d }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) { p.logger = logger }
}

// Process is one running feed driver. It implements crawler.FeedView.
type Process struct {
	mu        sync.Mutex
	enc       *json.Encoder
	stdin     io.Closer
	lines     <-chan string
	done      <-chan struct{}
	wait      func() error
	opTimeout time.Duration
	logger    *slog.Logger
}

// Start launches the driver command and performs no further handshake; the
// first Navigate call exercises the transport.
func Start(ctx context.Context, command []string, opts ...Option) (*Process, error) {
	if len(command) == 0 {
		return nil, services.Wrap(services.ErrValidation, "feedview", "start", "empty driver command", nil)
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...) //nolint:gosec
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrSession, "feedview", "start", "stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrSession, "feedview", "start", "stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrSession, "feedview", "start", command[0], err)
	}

	p := newProcess(stdin, stdout, cmd.Wait, opts...)
	return p, nil
}

// newProcess wires a Process over arbitrary pipes, which tests use directly.
func newProcess(stdin io.WriteCloser, stdout io.Reader, wait func() error, opts ...Option) *Process {
	lines := make(chan string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	p := &Process{
		enc:       json.NewEncoder(stdin),
		stdin:     stdin,
		lines:     lines,
		done:      done,
		wait:      wait,
		opTimeout: DefaultOpTimeout,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// roundTrip sends one request and waits for the next response line.
func (p *Process) roundTrip(ctx context.Context, req request) (response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opTimeout)
		defer cancel()
	}

	if err := p.enc.Encode(req); err != nil {
		return response{}, services.Wrap(services.ErrSession, "feedview", req.Op, "write request", err)
	}
	select {
	case line, ok := <-p.lines:
		if !ok {
			return response{}, services.Wrap(services.ErrSession, "feedview", req.Op, "driver closed its output", nil)
		}
		var resp response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			return response{}, services.Wrap(services.ErrSession, "feedview", req.Op, "malformed response", err)
		}
		if !resp.OK {
			return response{}, services.Wrap(services.ErrSession, "feedview", req.Op, resp.Error, nil)
		}
		return resp, nil
	case <-ctx.Done():
		return response{}, services.Wrap(services.ErrTimeout, "feedview", req.Op, "no response", ctx.Err())
	}
}

// Navigate loads url in the driver.
func (p *Process) Navigate(ctx context.Context, url string) error {
	_, err := p.roundTrip(ctx, request{Op: "navigate", URL: url})
	return err
}

// ArmObserver installs the driver's insertion observer.
func (p *Process) ArmObserver(ctx context.Context) error {
	_, err := p.roundTrip(ctx, request{Op: "arm"})
	return err
}

// Counts reads the driver's growth counters.
func (p *Process) Counts(ctx context.Context) (crawler.Counts, error) {
	resp, err := p.roundTrip(ctx, request{Op: "counts"})
	if err != nil {
		return crawler.Counts{}, err
	}
	return crawler.Counts{Articles: resp.Articles, Added: resp.Added}, nil
}

// ResetAdded zeroes the added-item counter.
func (p *Process) ResetAdded(ctx context.Context) error {
	_, err := p.roundTrip(ctx, request{Op: "reset"})
	return err
}

// SnapshotHrefs returns every candidate href currently rendered.
func (p *Process) SnapshotHrefs(ctx context.Context) ([]string, error) {
	resp, err := p.roundTrip(ctx, request{Op: "snapshot"})
	if err != nil {
		return nil, err
	}
	return resp.Hrefs, nil
}

// ScrollToBottom triggers one full load-more action.
func (p *Process) ScrollToBottom(ctx context.Context) error {
	_, err := p.roundTrip(ctx, request{Op: "scroll"})
	return err
}

// Nudge triggers a smaller load-more action.
func (p *Process) Nudge(ctx context.Context) error {
	_, err := p.roundTrip(ctx, request{Op: "nudge"})
	return err
}

// Prune asks the driver to drop all but the newest keepLast rendered items.
func (p *Process) Prune(ctx context.Context, keepLast int) error {
	_, err := p.roundTrip(ctx, request{Op: "prune", Keep: keepLast})
	return err
}

// Close asks the driver to quit, then tears the transport down. Safe to call
// after a transport failure.
func (p *Process) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = p.roundTrip(ctx, request{Op: "quit"})
	_ = p.stdin.Close()

	select {
	case <-p.done:
	case <-ctx.Done():
	}
	if p.wait != nil {
		return p.wait()
	}
	return nil
}

// Factory returns a crawler.SessionFactory that starts a fresh driver
// process per session.
func Factory(command []string, opts ...Option) crawler.SessionFactory {
	return func(ctx context.Context) (crawler.FeedView, error) {
		return Start(ctx, command, opts...)
	}
}
