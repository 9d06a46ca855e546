package scenariofile

import (
	"fmt"
	"strings"

	"github.com/torosent/granita/internal/extractor"
	"github.com/torosent/granita/internal/variables"
	"github.com/torosent/granita/request"
)

// ExpectationError reports a response that did not satisfy a step's expectations.
type ExpectationError struct {
	Scenario string
	Step     string
	Reason   string
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("scenario %s: step %s: expectation failed: %s", e.Scenario, e.Step, e.Reason)
}

// buildRequest expands placeholders and builds the step's request.
func (s Step) buildRequest(store variables.Store) (request.Request, error) {
	url := variables.Expand(s.URL, store)
	headers := variables.ExpandMap(s.Headers, store)

	switch s.Protocol {
	case ProtocolWebSocket:
		b := request.WebSocket(url)
		for k, v := range headers {
			b.Header(k, v)
		}
		for _, msg := range s.Messages {
			b.Message(variables.Expand(msg, store))
		}
		return b.Build()
	case ProtocolSSE:
		b := request.SSE(url).MaxEvents(s.MaxEvents)
		for k, v := range headers {
			b.Header(k, v)
		}
		return b.Build()
	case ProtocolGRPC:
		b := request.GRPC(url).
			Proto(variables.Expand(s.ProtoFile, store)).
			Method(s.Service, s.RPC)
		if msg := strings.TrimSpace(s.Message); msg != "" {
			b.Message(variables.Expand(msg, store))
		}
		for k, v := range variables.ExpandMap(s.Metadata, store) {
			b.Metadata(k, v)
		}
		return b.Build()
	default:
		return request.GET(url).Build()
	}
}

// responseText is the text expectations and extractors run against: the HTTP body, the
// last WebSocket reply, the data of the last SSE event or the gRPC reply as JSON.
func responseText(resp request.Response) string {
	switch r := resp.(type) {
	case request.HTTPResponse:
		return r.Body()
	case request.WebSocketResponse:
		if replies := r.Replies(); len(replies) > 0 {
			return replies[len(replies)-1]
		}
	case request.SSEResponse:
		if events := r.Events(); len(events) > 0 {
			return events[len(events)-1].Data
		}
	case request.GRPCResponse:
		return r.Message()
	}
	return ""
}

// check returns a non-empty reason when resp misses one of the expectations.
func (e Expect) check(resp request.Response, text string, store variables.Store) string {
	if e.Code != "" {
		if r, ok := resp.(request.GRPCResponse); ok && !strings.EqualFold(r.Code(), e.Code) {
			return fmt.Sprintf("code %s, want %s", r.Code(), e.Code)
		}
	}
	if e.BodyContains != "" {
		want := variables.Expand(e.BodyContains, store)
		if !strings.Contains(text, want) {
			return fmt.Sprintf("body does not contain %q", want)
		}
	}
	for _, je := range e.JSON {
		got, ok := extractor.Lookup(text, je.Path)
		if !ok {
			return fmt.Sprintf("json path %s not found", je.Path)
		}
		if want := variables.Expand(je.Equals, store); got != want {
			return fmt.Sprintf("json path %s = %q, want %q", je.Path, got, want)
		}
	}
	return ""
}
