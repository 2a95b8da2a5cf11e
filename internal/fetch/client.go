package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"snakewatch/internal/classify"
	"snakewatch/internal/services"
)

// DefaultTimeout bounds a single collaborator invocation.
const DefaultTimeout = 10 * time.Minute

// Option customizes a client.
type Option func(*client)

// WithExecutor replaces the process executor, mainly for tests.
func WithExecutor(e Executor) Option {
	return func(c *client) { c.exec = e }
}

// WithTimeout bounds each invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *client) { c.timeout = d }
}

// WithLogger attaches a logger for per-line progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *client) { c.logger = logger }
}

type client struct {
	component string
	command   []string
	timeout   time.Duration
	exec      Executor
	logger    *slog.Logger
}

func newClient(component string, command []string, opts ...Option) (*client, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, services.Wrap(services.ErrValidation, component, "configure", "empty collaborator command", nil)
	}
	c := &client{
		component: component,
		command:   command,
		timeout:   DefaultTimeout,
		exec:      commandExecutor{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// run invokes the collaborator with url appended to the configured command and
// returns the result payload. When the payload becomes extractable mid-stream
// onPayload fires once with it; run still waits for the process to exit and
// re-checks the full output if nothing was spotted while streaming.
func (c *client) run(ctx context.Context, url string, onPayload func([]byte)) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), c.command[1:]...), url)

	// Only stdout feeds the payload buffer; collaborators interleave
	// diagnostics on stderr, sometimes mid-payload.
	var buf strings.Builder
	var payload []byte
	markerSeen := false
	onStdout := func(line string) {
		c.logger.Debug("collaborator output", "component", c.component, "line", line)
		buf.WriteString(line)
		buf.WriteByte('\n')
		if !markerSeen {
			markerSeen = strings.Contains(line, ResultMarker)
		}
		if markerSeen && payload == nil {
			if p, ok := ExtractResult(buf.String()); ok {
				payload = p
				if onPayload != nil {
					onPayload(p)
				}
			}
		}
	}
	onStderr := func(line string) {
		c.logger.Debug("collaborator stderr", "component", c.component, "line", line)
	}
	err := c.exec.Run(ctx, c.command[0], args, onStdout, onStderr)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, c.component, "run", fmt.Sprintf("exceeded %s", c.timeout), err)
		}
		return nil, services.Wrap(services.ErrCollaborator, c.component, "run", c.command[0], err)
	}
	if payload == nil {
		p, ok := ExtractResult(buf.String())
		if !ok {
			return nil, services.Wrap(services.ErrCollaborator, c.component, "parse", "no result payload in output", nil)
		}
		payload = p
	}
	return payload, nil
}

// CommentsResult is the payload of the comment collaborator. Older
// collaborator builds emit comments_filtered instead of comments, and some
// omit scraped_total.
type CommentsResult struct {
	URL              string             `json:"url"`
	Comments         []classify.Comment `json:"comments"`
	CommentsFiltered []classify.Comment `json:"comments_filtered"`
	ScrapedTotal     int                `json:"scraped_total"`
}

// EffectiveComments returns whichever comment list the collaborator filled.
func (r CommentsResult) EffectiveComments() []classify.Comment {
	if len(r.Comments) > 0 {
		return r.Comments
	}
	return r.CommentsFiltered
}

// Total returns the reported scrape count, falling back to the list length.
func (r CommentsResult) Total() int {
	if r.ScrapedTotal > 0 {
		return r.ScrapedTotal
	}
	return len(r.EffectiveComments())
}

// Record converts the result into the classification input shape.
func (r CommentsResult) Record() classify.PostRecord {
	return classify.PostRecord{URL: r.URL, Comments: r.EffectiveComments()}
}

// CommentsClient fetches the comment section of one post.
type CommentsClient struct {
	c *client
}

// NewCommentsClient builds a client around the configured command.
func NewCommentsClient(command []string, opts ...Option) (*CommentsClient, error) {
	c, err := newClient("comments", command, opts...)
	if err != nil {
		return nil, err
	}
	return &CommentsClient{c: c}, nil
}

// Fetch retrieves the comments of url. onEarly, when non-nil, fires as soon
// as a decodable result shows up in the stream, before the process exits.
func (cc *CommentsClient) Fetch(ctx context.Context, url string, onEarly func(CommentsResult)) (CommentsResult, error) {
	var observe func([]byte)
	if onEarly != nil {
		observe = func(payload []byte) {
			if result, err := decodeComments(cc.c, payload, url); err == nil {
				onEarly(result)
			}
		}
	}
	payload, err := cc.c.run(ctx, url, observe)
	if err != nil {
		return CommentsResult{}, err
	}
	return decodeComments(cc.c, payload, url)
}

func decodeComments(c *client, payload []byte, url string) (CommentsResult, error) {
	var result CommentsResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return CommentsResult{}, services.Wrap(services.ErrCollaborator, c.component, "decode", "malformed result payload", err)
	}
	if result.URL == "" {
		result.URL = url
	}
	return result, nil
}

// DetailsClient fetches the header fields of one post.
type DetailsClient struct {
	c *client
}

// NewDetailsClient builds a client around the configured command.
func NewDetailsClient(command []string, opts ...Option) (*DetailsClient, error) {
	c, err := newClient("details", command, opts...)
	if err != nil {
		return nil, err
	}
	return &DetailsClient{c: c}, nil
}

// Fetch retrieves poster, text, and date for url.
func (dc *DetailsClient) Fetch(ctx context.Context, url string) (classify.PostDetails, error) {
	payload, err := dc.c.run(ctx, url, nil)
	if err != nil {
		return classify.PostDetails{}, err
	}
	var details classify.PostDetails
	if err := json.Unmarshal(payload, &details); err != nil {
		return classify.PostDetails{}, services.Wrap(services.ErrCollaborator, dc.c.component, "decode", "malformed result payload", err)
	}
	if details.URL == "" {
		details.URL = url
	}
	return details, nil
}
