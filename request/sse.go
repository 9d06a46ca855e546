package request

import (
	"maps"
	"slices"
	"strings"
)

// Event is a single Server-Sent Event.
type Event struct {
	ID    string
	Event string
	Data  string
}

// SSERequest subscribes to an event stream and collects up to MaxEvents events.
type SSERequest struct {
	url       string
	headers   map[string]string
	maxEvents int
}

func (SSERequest) Kind() Kind { return KindSSE }
func (SSERequest) isRequest() {}

func (r SSERequest) URL() string { return r.url }
func (r SSERequest) Headers() map[string]string { return cloneHeaders(r.headers) }
func (r SSERequest) MaxEvents() int { return r.maxEvents }

func (r SSERequest) Validate() error {
	if !validURL(r.url) {
		return ErrInvalidURL
	}
	if r.maxEvents <= 0 {
		return ErrInvalidMaxEvents
	}
	return validateHeaders(r.headers)
}

func (r SSERequest) Equal(other SSERequest) bool {
	return r.url == other.url && r.maxEvents == other.maxEvents && maps.Equal(r.headers, other.headers)
}

// SSEBuilder accumulates an SSERequest. MaxEvents defaults to 1.
type SSEBuilder struct {
	url       string
	headers   map[string]string
	maxEvents int
}

func SSE(url string) *SSEBuilder {
	return &SSEBuilder{url: url, headers: map[string]string{}, maxEvents: 1}
}

func (b *SSEBuilder) Header(key, value string) *SSEBuilder {
	b.headers[canonicalKey(key)] = value
	return b
}

func (b *SSEBuilder) MaxEvents(n int) *SSEBuilder {
	b.maxEvents = n
	return b
}

func (b *SSEBuilder) Build() (SSERequest, error) {
	req := SSERequest{
		url:       strings.TrimSpace(b.url),
		headers:   cloneHeaders(b.headers),
		maxEvents: b.maxEvents,
	}
	if err := req.Validate(); err != nil {
		return SSERequest{}, err
	}
	return req, nil
}

// SSEResponse holds the events read before the stream ended or the limit was reached.
type SSEResponse struct {
	events []Event
}

func NewSSEResponse(events []Event) SSEResponse {
	return SSEResponse{events: slices.Clone(events)}
}

func (SSEResponse) Kind() Kind { return KindSSE }
func (SSEResponse) isResponse() {}

func (r SSEResponse) Events() []Event { return slices.Clone(r.events) }

func (r SSEResponse) Equal(other SSEResponse) bool {
	return slices.Equal(r.events, other.events)
}
