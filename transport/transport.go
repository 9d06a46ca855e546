// Package transport declares the capabilities the granita executor dispatches to.
//
// Each protocol is one small interface. Production implementations live in the
// internal client packages; tests supply their own through the Func adapters:
//
//	fetcher := transport.FetcherFunc(func(ctx context.Context, url string) (string, error) {
//		return "success", nil
//	})
//
// Implementations own all wire-level concerns (dialing, framing, connection reuse). The
// executor only sees the values and errors returned here.
package transport

import (
	"context"
	"fmt"
)

// Fetcher retrieves the body of the resource identified by url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Exchanger sends text messages over a WebSocket and returns one reply per message.
type Exchanger interface {
	Exchange(ctx context.Context, url string, headers map[string]string, messages []string) ([]string, error)
}

type ExchangerFunc func(ctx context.Context, url string, headers map[string]string, messages []string) ([]string, error)

func (f ExchangerFunc) Exchange(ctx context.Context, url string, headers map[string]string, messages []string) ([]string, error) {
	return f(ctx, url, headers, messages)
}

// Event is a Server-Sent Event as read from the wire.
type Event struct {
	ID    string
	Event string
	Data  string
}

// Streamer reads up to maxEvents events from an event stream. A stream that ends early
// is not an error; the events read so far are returned.
type Streamer interface {
	Stream(ctx context.Context, url string, headers map[string]string, maxEvents int) ([]Event, error)
}

type StreamerFunc func(ctx context.Context, url string, headers map[string]string, maxEvents int) ([]Event, error)

func (f StreamerFunc) Stream(ctx context.Context, url string, headers map[string]string, maxEvents int) ([]Event, error) {
	return f(ctx, url, headers, maxEvents)
}

// Call describes a unary RPC.
type Call struct {
	Target    string
	ProtoFile string
	Service   string
	Method    string
	Message   string // JSON
	Metadata  map[string]string
}

// Reply is the outcome of a successful unary RPC.
type Reply struct {
	Code    string
	Message string // JSON
}

// Invoker performs unary RPCs.
type Invoker interface {
	Invoke(ctx context.Context, call Call) (Reply, error)
}

type InvokerFunc func(ctx context.Context, call Call) (Reply, error)

func (f InvokerFunc) Invoke(ctx context.Context, call Call) (Reply, error) {
	return f(ctx, call)
}

// Set bundles one implementation per capability.
type Set struct {
	HTTP      Fetcher
	WebSocket Exchanger
	SSE       Streamer
	GRPC      Invoker
}

// Kind classifies a transport failure for display. Callers above the executor never
// branch on it.
type Kind int

const (
	KindURI Kind = iota + 1
	KindConnect
	KindProtocol
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindURI:
		return "URI"
	case KindConnect:
		return "connect"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	default:
		return "transport"
	}
}

// Error is an implementation-defined transport failure.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

// NewError wraps err with its kind and the URL or target being accessed.
func NewError(kind Kind, url string, err error) *Error {
	return &Error{Kind: kind, URL: url, Err: err}
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
