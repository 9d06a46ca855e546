package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/torosent/granita/transport"
)

func TestFetchReturnsBody(t *testing.T) {
	var gotMethod, gotHost string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHost = r.Host
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	body, err := NewFetcher(time.Second).Fetch(context.Background(), server.URL+"/test")
	if err != nil {
		t.Fatalf("expected body, got error: %v", err)
	}
	if body != "hello" {
		t.Fatalf("expected body %q, got %q", "hello", body)
	}
	if gotMethod != http.MethodGet {
		t.Fatalf("expected GET, got %s", gotMethod)
	}
	if gotHost == "" {
		t.Fatalf("expected Host header to be set")
	}
}

func TestFetchAcceptsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	body, err := NewFetcher(time.Second).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected body for 500 response, got error: %v", err)
	}
	if body != "boom" {
		t.Fatalf("expected body %q, got %q", "boom", body)
	}
}

func TestFetchURIErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "no scheme", url: "localhost:8080/x"},
		{name: "no host", url: "http:///path"},
		{name: "unsupported scheme", url: "ftp://example.com/file"},
		{name: "unparseable", url: "http://[::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFetcher(time.Second).Fetch(context.Background(), tt.url)
			var terr *transport.Error
			if !errors.As(err, &terr) {
				t.Fatalf("expected *transport.Error, got %T (%v)", err, err)
			}
			if terr.Kind != transport.KindURI {
				t.Fatalf("expected URI kind, got %s", terr.Kind)
			}
		})
	}
}

func TestFetchConnectError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	_, err = NewFetcher(time.Second).Fetch(context.Background(), "http://"+addr)
	var terr *transport.Error
	if !errors.As(err, &terr) || terr.Kind != transport.KindConnect {
		t.Fatalf("expected connect error, got %v", err)
	}
}

func TestFetchRejectsInvalidUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0xff, 0xfe, 0xfd})
	}))
	defer server.Close()

	_, err := NewFetcher(time.Second).Fetch(context.Background(), server.URL)
	var terr *transport.Error
	if !errors.As(err, &terr) || terr.Kind != transport.KindDecode {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestClientTimeoutApplied(t *testing.T) {
	timeout := 50 * time.Millisecond
	client := NewClient(timeout)
	defer client.CloseIdleConnections()

	if client.Timeout != timeout {
		t.Fatalf("expected client timeout %s, got %s", timeout, client.Timeout)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(timeout * 3)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	start := time.Now()
	_, err := NewFetcherWithClient(client).Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatalf("expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed > timeout*5 {
		t.Fatalf("request took too long: %s", elapsed)
	}

	var netErr net.Error
	if !errors.Is(err, context.DeadlineExceeded) && (!errors.As(err, &netErr) || !netErr.Timeout()) {
		t.Fatalf("expected timeout error, got %v", err)
	}

	rt, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if rt.MaxIdleConns == 0 || rt.IdleConnTimeout == 0 {
		t.Fatalf("expected transport to pool idle connections")
	}
}

func TestNewClientClampsNegativeTimeout(t *testing.T) {
	if got := NewClient(-time.Second).Timeout; got != 0 {
		t.Fatalf("expected negative timeout to clamp to 0, got %s", got)
	}
}
