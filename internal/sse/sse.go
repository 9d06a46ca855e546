// Package sse implements the Server-Sent Events transport used for SSE requests.
package sse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/torosent/granita/internal/tracing"
	"github.com/torosent/granita/transport"
)

// ErrClosed is returned by ReadEvent when the server ends the stream.
var ErrClosed = errors.New("connection closed")

// Event represents a Server-Sent Event.
type Event struct {
	ID    string
	Event string
	Data  string
}

// StatusError is returned when the SSE endpoint responds with a non-200 status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Client represents an SSE client connection.
type Client struct {
	url        string
	headers    http.Header
	httpClient *http.Client
	resp       *http.Response
	reader     *bufio.Reader
	mu         sync.Mutex
}

// Config configures the SSE client behavior.
type Config struct {
	URL     string
	Headers http.Header
	Timeout time.Duration
}

// NewClient creates a new SSE client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		url:     cfg.URL,
		headers: cfg.Headers,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Connect establishes an SSE connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resp != nil {
		return fmt.Errorf("already connected")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return &StatusError{Code: resp.StatusCode}
	}

	c.resp = resp
	c.reader = bufio.NewReader(resp.Body)
	return nil
}

// ReadEvent reads the next SSE event from the stream.
func (c *Client) ReadEvent(ctx context.Context) (Event, error) {
	c.mu.Lock()
	reader := c.reader
	c.mu.Unlock()

	if reader == nil {
		return Event{}, fmt.Errorf("not connected")
	}

	event := Event{}
	var dataLines []string

	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, ErrClosed
			}
			return Event{}, fmt.Errorf("read line: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")

		// Empty line marks end of event
		if line == "" {
			if len(dataLines) > 0 || event.Event != "" || event.ID != "" {
				event.Data = strings.Join(dataLines, "\n")
				return event, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}

		field := line[:colonIdx]
		value := strings.TrimPrefix(line[colonIdx+1:], " ")

		switch field {
		case "id":
			event.ID = value
		case "event":
			event.Event = value
		case "data":
			dataLines = append(dataLines, value)
		}
	}
}

// Close closes the SSE connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resp == nil {
		return nil
	}

	err := c.resp.Body.Close()
	c.resp = nil
	c.reader = nil
	return err
}

// Streamer implements transport.Streamer with one connection per call.
type Streamer struct {
	Timeout time.Duration
}

// Stream connects to rawURL and collects up to maxEvents events. A stream closed by the
// server before the limit yields the events read so far.
func (s *Streamer) Stream(ctx context.Context, rawURL string, headers map[string]string, maxEvents int) ([]transport.Event, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateURL(rawURL); err != nil {
		return nil, transport.NewError(transport.KindURI, rawURL, err)
	}

	header := make(http.Header, len(headers))
	for k, v := range headers {
		header.Set(k, v)
	}
	tracing.InjectHTTPHeaders(ctx, header)
	client := NewClient(Config{URL: rawURL, Headers: header, Timeout: s.Timeout})
	if err := client.Connect(ctx); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, transport.NewError(transport.KindProtocol, rawURL, err)
		}
		return nil, transport.NewError(transport.KindConnect, rawURL, err)
	}
	defer client.Close()

	events := make([]transport.Event, 0, maxEvents)
	for len(events) < maxEvents {
		ev, err := client.ReadEvent(ctx)
		if errors.Is(err, ErrClosed) {
			break
		}
		if err != nil {
			return nil, transport.NewError(transport.KindProtocol, rawURL, err)
		}
		events = append(events, transport.Event{ID: ev.ID, Event: ev.Event, Data: ev.Data})
	}
	return events, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return errors.New("no host")
	}
	return nil
}
