package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/torosent/granita/internal/tracing"
	"github.com/torosent/granita/transport"
)

const maxBodyReadSize = 16 * 1024 * 1024

var errNoHost = errors.New("no host")

// Fetcher implements transport.Fetcher on top of net/http.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests are bounded by timeout (0 means no limit).
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: NewClient(timeout)}
}

// NewFetcherWithClient wraps an existing client.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	if client == nil {
		client = NewClient(0)
	}
	return &Fetcher{client: client}
}

// Fetch performs a GET against rawURL and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	target, err := parseTarget(rawURL)
	if err != nil {
		return "", transport.NewError(transport.KindURI, rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", transport.NewError(transport.KindURI, rawURL, err)
	}
	tracing.InjectHTTPHeaders(ctx, req.Header)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", transport.NewError(transport.KindConnect, rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))
	if err != nil {
		return "", transport.NewError(transport.KindProtocol, rawURL, fmt.Errorf("read body: %w", err))
	}
	if !utf8.Valid(body) {
		return "", transport.NewError(transport.KindDecode, rawURL, errors.New("body is not valid UTF-8"))
	}
	return string(body), nil
}

func parseTarget(rawURL string) (*url.URL, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch target.Scheme {
	case "http", "https":
	case "":
		return nil, errors.New("missing scheme")
	default:
		return nil, fmt.Errorf("unsupported scheme %q", target.Scheme)
	}
	if target.Hostname() == "" {
		return nil, errNoHost
	}
	return target, nil
}

// NewClient returns an HTTP client with keep-alive connection pooling.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	rt := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}
