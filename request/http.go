package request

import (
	"fmt"
	"maps"
	"strings"
)

// Method is an HTTP request method.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// ParseMethod maps a case-insensitive method name to a Method.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(name)))
	if !m.valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, name)
	}
	return m, nil
}

func (m Method) valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions:
		return true
	}
	return false
}

// HTTPRequest is a validated HTTP request.
type HTTPRequest struct {
	method  Method
	url     string
	headers map[string]string
}

func (HTTPRequest) Kind() Kind { return KindHTTP }
func (HTTPRequest) isRequest() {}

func (r HTTPRequest) Method() Method { return r.method }
func (r HTTPRequest) URL() string { return r.url }

// Headers returns a copy of the request headers.
func (r HTTPRequest) Headers() map[string]string { return cloneHeaders(r.headers) }

// Validate reports whether r satisfies the invariants Build enforces. The zero value
// fails with ErrInvalidURL.
func (r HTTPRequest) Validate() error {
	if !validURL(r.url) {
		return ErrInvalidURL
	}
	if !r.method.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, r.method)
	}
	return validateHeaders(r.headers)
}

// Equal reports structural equality. Header order is irrelevant.
func (r HTTPRequest) Equal(other HTTPRequest) bool {
	return r.method == other.method && r.url == other.url && maps.Equal(r.headers, other.headers)
}

// HTTPRequestBuilder accumulates an HTTP request. Setters never fail.
type HTTPRequestBuilder struct {
	method  Method
	url     string
	headers map[string]string
}

// GET starts a GET request for url with no headers.
func GET(url string) *HTTPRequestBuilder {
	return NewHTTP(MethodGet, url)
}

// NewHTTP starts a request with an explicit method.
func NewHTTP(method Method, url string) *HTTPRequestBuilder {
	return &HTTPRequestBuilder{
		method:  method,
		url:     url,
		headers: map[string]string{},
	}
}

// Header sets a header. Setting the same key again replaces the previous value.
func (b *HTTPRequestBuilder) Header(key, value string) *HTTPRequestBuilder {
	b.headers[canonicalKey(key)] = value
	return b
}

// Build validates the accumulated fields and returns an immutable request.
func (b *HTTPRequestBuilder) Build() (HTTPRequest, error) {
	req := HTTPRequest{
		method:  b.method,
		url:     strings.TrimSpace(b.url),
		headers: cloneHeaders(b.headers),
	}
	if err := req.Validate(); err != nil {
		return HTTPRequest{}, err
	}
	return req, nil
}

// HTTPResponse is the response to an HTTPRequest.
type HTTPResponse struct {
	status  uint16
	headers map[string]string
	body    string
}

func (HTTPResponse) Kind() Kind { return KindHTTP }
func (HTTPResponse) isResponse() {}

func (r HTTPResponse) Status() uint16 { return r.status }
func (r HTTPResponse) Body() string { return r.body }

// Headers returns a copy of the response headers.
func (r HTTPResponse) Headers() map[string]string { return cloneHeaders(r.headers) }

// Header returns a single header value. Keys are stored as inserted, but the lookup
// ignores case like HTTP header names do: an exact match wins, then any key equal
// under case folding.
func (r HTTPResponse) Header(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if v, ok := r.headers[key]; ok {
		return v, true
	}
	for k, v := range r.headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Equal reports structural equality. Header order is irrelevant.
func (r HTTPResponse) Equal(other HTTPResponse) bool {
	return r.status == other.status && r.body == other.body && maps.Equal(r.headers, other.headers)
}

// HTTPResponseBuilder is the only way to construct an HTTPResponse.
type HTTPResponseBuilder struct {
	status  *uint16
	headers map[string]string
	body    *string
}

func NewHTTPResponseBuilder() *HTTPResponseBuilder {
	return &HTTPResponseBuilder{headers: map[string]string{}}
}

func (b *HTTPResponseBuilder) Status(status uint16) *HTTPResponseBuilder {
	b.status = &status
	return b
}

func (b *HTTPResponseBuilder) InsertHeader(key, value string) *HTTPResponseBuilder {
	b.headers[key] = value
	return b
}

func (b *HTTPResponseBuilder) Body(body string) *HTTPResponseBuilder {
	b.body = &body
	return b
}

// Build fails with ErrMissingStatus when Status was never called. An unset body is "".
func (b *HTTPResponseBuilder) Build() (HTTPResponse, error) {
	if b.status == nil {
		return HTTPResponse{}, ErrMissingStatus
	}
	resp := HTTPResponse{
		status:  *b.status,
		headers: cloneHeaders(b.headers),
	}
	if b.body != nil {
		resp.body = *b.body
	}
	return resp, nil
}
