package request

import (
	"maps"
	"slices"
	"strings"
)

// WebSocketRequest opens a WebSocket connection, sends each message in order and reads
// one reply per message.
type WebSocketRequest struct {
	url      string
	headers  map[string]string
	messages []string
}

func (WebSocketRequest) Kind() Kind { return KindWebSocket }
func (WebSocketRequest) isRequest() {}

func (r WebSocketRequest) URL() string { return r.url }
func (r WebSocketRequest) Headers() map[string]string { return cloneHeaders(r.headers) }
func (r WebSocketRequest) Messages() []string { return slices.Clone(r.messages) }

func (r WebSocketRequest) Validate() error {
	if !validURL(r.url) {
		return ErrInvalidURL
	}
	return validateHeaders(r.headers)
}

func (r WebSocketRequest) Equal(other WebSocketRequest) bool {
	return r.url == other.url && maps.Equal(r.headers, other.headers) && slices.Equal(r.messages, other.messages)
}

// WebSocketBuilder accumulates a WebSocketRequest.
type WebSocketBuilder struct {
	url      string
	headers  map[string]string
	messages []string
}

func WebSocket(url string) *WebSocketBuilder {
	return &WebSocketBuilder{url: url, headers: map[string]string{}}
}

func (b *WebSocketBuilder) Header(key, value string) *WebSocketBuilder {
	b.headers[canonicalKey(key)] = value
	return b
}

// Message appends a text message to send.
func (b *WebSocketBuilder) Message(msg string) *WebSocketBuilder {
	b.messages = append(b.messages, msg)
	return b
}

func (b *WebSocketBuilder) Build() (WebSocketRequest, error) {
	req := WebSocketRequest{
		url:      strings.TrimSpace(b.url),
		headers:  cloneHeaders(b.headers),
		messages: slices.Clone(b.messages),
	}
	if err := req.Validate(); err != nil {
		return WebSocketRequest{}, err
	}
	return req, nil
}

// WebSocketResponse holds the replies received, one per sent message.
type WebSocketResponse struct {
	replies []string
}

func NewWebSocketResponse(replies []string) WebSocketResponse {
	return WebSocketResponse{replies: slices.Clone(replies)}
}

func (WebSocketResponse) Kind() Kind { return KindWebSocket }
func (WebSocketResponse) isResponse() {}

func (r WebSocketResponse) Replies() []string { return slices.Clone(r.replies) }

func (r WebSocketResponse) Equal(other WebSocketResponse) bool {
	return slices.Equal(r.replies, other.replies)
}
