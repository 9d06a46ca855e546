// Package websocket implements the WebSocket transport used for WebSocket requests.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/torosent/granita/internal/tracing"
	"github.com/torosent/granita/transport"
)

// Message represents a WebSocket message to send or receive.
type Message struct {
	Type int // websocket.TextMessage or websocket.BinaryMessage
	Data []byte
}

// Client is a single WebSocket connection.
type Client struct {
	url         string
	headers     http.Header
	dialer      *websocket.Dialer
	readTimeout time.Duration
	conn        *websocket.Conn
	mu          sync.Mutex
}

// Config configures the WebSocket client behavior.
type Config struct {
	URL              string
	Headers          http.Header
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
}

// NewClient creates a new WebSocket client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 30 * time.Second
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
		Proxy:            http.ProxyFromEnvironment,
	}

	return &Client{
		url:         cfg.URL,
		headers:     cfg.Headers,
		dialer:      dialer,
		readTimeout: cfg.ReadTimeout,
	}
}

// Connect establishes a WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return fmt.Errorf("already connected")
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	c.conn = conn
	return nil
}

// SendMessage sends a message over the WebSocket connection.
func (c *Client) SendMessage(ctx context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	}
	if err := c.conn.WriteMessage(msg.Type, msg.Data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// ReceiveMessage reads a message from the WebSocket connection. The read is bounded by
// the context deadline or the configured read timeout, whichever is earlier.
func (c *Client) ReceiveMessage(ctx context.Context) (Message, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return Message{}, fmt.Errorf("not connected")
	}

	var deadline time.Time
	if c.readTimeout > 0 {
		deadline = time.Now().Add(c.readTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	msgType, data, err := conn.ReadMessage()
	if err != nil {
		return Message{}, fmt.Errorf("read message: %w", err)
	}
	return Message{Type: msgType, Data: data}, nil
}

// Close closes the WebSocket connection gracefully.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(5*time.Second),
	)

	closeErr := c.conn.Close()
	c.conn = nil

	if err != nil {
		return err
	}
	return closeErr
}

// Exchanger implements transport.Exchanger with one connection per exchange.
type Exchanger struct {
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
}

// Exchange sends messages in order, reading one text reply after each.
func (e *Exchanger) Exchange(ctx context.Context, rawURL string, headers map[string]string, messages []string) ([]string, error) {
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

	client := NewClient(Config{
		URL:              rawURL,
		Headers:          header,
		HandshakeTimeout: e.HandshakeTimeout,
		ReadTimeout:      e.ReadTimeout,
	})
	if err := client.Connect(ctx); err != nil {
		return nil, transport.NewError(transport.KindConnect, rawURL, err)
	}
	defer client.Close()

	replies := make([]string, 0, len(messages))
	for _, msg := range messages {
		if err := client.SendMessage(ctx, Message{Type: websocket.TextMessage, Data: []byte(msg)}); err != nil {
			return nil, transport.NewError(transport.KindProtocol, rawURL, err)
		}
		reply, err := client.ReceiveMessage(ctx)
		if err != nil {
			return nil, transport.NewError(transport.KindProtocol, rawURL, err)
		}
		replies = append(replies, string(reply.Data))
	}
	return replies, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return errors.New("no host")
	}
	return nil
}
