// Package request defines the protocol-neutral request and response model used by
// granita scenarios.
//
// A [Request] is a closed set of variants, one per protocol. Every variant is produced
// by a builder whose setters never validate; validation happens only in Build:
//
//	req, err := request.GET("http://localhost:8080/health").
//		Header("Accept", "application/json").
//		Build()
//
// Built values are immutable. Changing a request means building a new one.
package request

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"
)

// Kind identifies a request or response variant.
type Kind string

const (
	KindHTTP      Kind = "http"
	KindWebSocket Kind = "websocket"
	KindSSE       Kind = "sse"
	KindGRPC      Kind = "grpc"
)

// Kinds lists every variant in declaration order. Dispatchers use it to verify they
// handle the complete set.
func Kinds() []Kind {
	return []Kind{KindHTTP, KindWebSocket, KindSSE, KindGRPC}
}

// Request is a request to be executed by a Context. Only this package declares variants.
type Request interface {
	Kind() Kind
	isRequest()
}

// Response is the result of executing a Request. Variants mirror Request.
type Response interface {
	Kind() Kind
	isResponse()
}

var (
	// ErrInvalidURL is returned by Build when the URL or target is empty.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrInvalidMethod is returned by Build when the method is not supported.
	ErrInvalidMethod = errors.New("invalid method")
	// ErrInvalidHeader is returned by Build when a header key or value is malformed.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrMissingStatus is returned by HTTPResponseBuilder.Build when no status was set.
	ErrMissingStatus = errors.New("status is required")
	// ErrInvalidMaxEvents is returned by SSEBuilder.Build for a non-positive event limit.
	ErrInvalidMaxEvents = errors.New("max events must be > 0")
)

func validURL(raw string) bool {
	return strings.TrimSpace(raw) != ""
}

func validateHeaders(headers map[string]string) error {
	for key, value := range headers {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "\r\n") {
			return fmt.Errorf("%w: key %q", ErrInvalidHeader, key)
		}
		if strings.ContainsAny(value, "\r\n") {
			return fmt.Errorf("%w: value for %s", ErrInvalidHeader, http.CanonicalHeaderKey(key))
		}
	}
	return nil
}

func cloneHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	maps.Copy(out, headers)
	return out
}

// canonicalKey folds header keys so that "x-id" and "X-Id" address the same entry.
func canonicalKey(key string) string {
	return http.CanonicalHeaderKey(strings.TrimSpace(key))
}
