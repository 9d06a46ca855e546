package sse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/torosent/granita/transport"
)

func createTestSSEServer(handler func(w http.ResponseWriter)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		handler(w)
	}))
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func TestSSEConnectAndReadEvents(t *testing.T) {
	server := createTestSSEServer(func(w http.ResponseWriter) {
		fmt.Fprintf(w, "id: 7\n")
		fmt.Fprintf(w, "event: message\n")
		fmt.Fprintf(w, "data: Hello, SSE!\n")
		fmt.Fprintf(w, "\n")
		flush(w)
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	event, err := client.ReadEvent(ctx)
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if event.ID != "7" || event.Event != "message" || event.Data != "Hello, SSE!" {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestSSEMultilineDataAndComments(t *testing.T) {
	server := createTestSSEServer(func(w http.ResponseWriter) {
		fmt.Fprintf(w, ": comment\n")
		fmt.Fprintf(w, "data: line one\n")
		fmt.Fprintf(w, "malformed line\n")
		fmt.Fprintf(w, "data:line two\n")
		fmt.Fprintf(w, "\n")
		flush(w)
	})
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	event, err := client.ReadEvent(context.Background())
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if event.Data != "line one\nline two" {
		t.Errorf("expected joined data lines, got %q", event.Data)
	}
}

func TestSSENon200StatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"404 Not Found", http.StatusNotFound},
		{"500 Internal Server Error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			err := NewClient(Config{URL: server.URL}).Connect(context.Background())
			var statusErr *StatusError
			if !errors.As(err, &statusErr) || statusErr.Code != tt.statusCode {
				t.Fatalf("expected StatusError %d, got %v", tt.statusCode, err)
			}
		})
	}
}

func TestSSEReadWithoutConnect(t *testing.T) {
	client := NewClient(Config{URL: "http://localhost:1"})
	if _, err := client.ReadEvent(context.Background()); err == nil {
		t.Fatal("expected error when reading without connection")
	}
}

func TestSSEConnectionClosed(t *testing.T) {
	server := createTestSSEServer(func(w http.ResponseWriter) {})
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if _, err := client.ReadEvent(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestStreamStopsAtMaxEvents(t *testing.T) {
	gotHeader := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader <- r.Header.Get("X-Client")
		w.WriteHeader(http.StatusOK)
		for i := 0; i < 5; i++ {
			fmt.Fprintf(w, "data: %d\n\n", i)
		}
		flush(w)
	}))
	defer server.Close()

	events, err := (&Streamer{}).Stream(context.Background(), server.URL, map[string]string{"X-Client": "granita"}, 2)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if len(events) != 2 || events[0].Data != "0" || events[1].Data != "1" {
		t.Fatalf("unexpected events %+v", events)
	}
	if h := <-gotHeader; h != "granita" {
		t.Fatalf("expected custom header, got %q", h)
	}
}

func TestStreamReturnsPartialOnClose(t *testing.T) {
	server := createTestSSEServer(func(w http.ResponseWriter) {
		fmt.Fprintf(w, "data: only\n\n")
		flush(w)
	})
	defer server.Close()

	events, err := (&Streamer{}).Stream(context.Background(), server.URL, nil, 3)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if len(events) != 1 || events[0].Data != "only" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestStreamErrors(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	tests := []struct {
		name string
		url  string
		kind transport.Kind
	}{
		{name: "bad scheme", url: "ws://localhost/events", kind: transport.KindURI},
		{name: "refused", url: "http://127.0.0.1:1/events", kind: transport.KindConnect},
		{name: "status", url: notFound.URL, kind: transport.KindProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Streamer{Timeout: time.Second}).Stream(context.Background(), tt.url, nil, 1)
			var terr *transport.Error
			if !errors.As(err, &terr) || terr.Kind != tt.kind {
				t.Fatalf("expected %s error, got %v", tt.kind, err)
			}
			if !strings.Contains(err.Error(), tt.url) {
				t.Fatalf("expected error to mention URL, got %q", err.Error())
			}
		})
	}
}
