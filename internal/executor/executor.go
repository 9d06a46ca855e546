// Package executor turns abstract requests into responses by dispatching each request
// kind to the matching transport capability.
//
// Every kind listed by request.Kinds has a handler. New panics when one is missing, so
// adding a request variant without teaching the executor about it fails at startup
// rather than on the first request of that kind.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/torosent/granita/request"
	"github.com/torosent/granita/transport"
)

// Handler executes a single request.
type Handler interface {
	Execute(ctx context.Context, req request.Request) (request.Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req request.Request) (request.Response, error)

func (f HandlerFunc) Execute(ctx context.Context, req request.Request) (request.Response, error) {
	return f(ctx, req)
}

// ErrorKind classifies executor failures.
type ErrorKind int

const (
	KindHTTPRequestBuild ErrorKind = iota + 1
	KindHTTPResponseBuild
	KindFailedExecution
	KindRequestBuild
)

var (
	ErrHTTPRequestBuild  = errors.New("http request build error")
	ErrHTTPResponseBuild = errors.New("http response build error")
	ErrFailedExecution   = errors.New("failed execution")
	ErrRequestBuild      = errors.New("request build error")

	// ErrUnsupportedRequest is wrapped by KindFailedExecution errors for nil requests
	// and variants the executor has no handler for.
	ErrUnsupportedRequest = errors.New("unsupported request")
	// ErrNoTransport is wrapped when the capability for a request kind is not configured.
	ErrNoTransport = errors.New("no transport configured")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindHTTPRequestBuild:
		return ErrHTTPRequestBuild
	case KindHTTPResponseBuild:
		return ErrHTTPResponseBuild
	case KindFailedExecution:
		return ErrFailedExecution
	case KindRequestBuild:
		return ErrRequestBuild
	}
	return nil
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("executor error %d", int(k))
}

// Error is returned by Execute. Err carries the underlying cause, typically a
// *transport.Error or a request validation error.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Executor dispatches requests to the transports of a transport.Set.
type Executor struct {
	transports transport.Set
	handlers   map[request.Kind]HandlerFunc
}

// New builds an executor over set. Capabilities left nil in set fail at execution time
// with ErrNoTransport.
func New(set transport.Set) *Executor {
	e := &Executor{transports: set}
	e.handlers = map[request.Kind]HandlerFunc{
		request.KindHTTP:      e.executeHTTP,
		request.KindWebSocket: e.executeWebSocket,
		request.KindSSE:       e.executeSSE,
		request.KindGRPC:      e.executeGRPC,
	}
	for _, k := range request.Kinds() {
		if _, ok := e.handlers[k]; !ok {
			panic(fmt.Sprintf("executor: no handler for request kind %q", k))
		}
	}
	return e
}

// Execute runs req and returns its response.
func (e *Executor) Execute(ctx context.Context, req request.Request) (request.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, ok := deref(req)
	if !ok {
		return nil, newError(KindFailedExecution, ErrUnsupportedRequest)
	}
	h, ok := e.handlers[req.Kind()]
	if !ok {
		return nil, newError(KindFailedExecution, fmt.Errorf("%w: kind %q", ErrUnsupportedRequest, req.Kind()))
	}
	return h(ctx, req)
}

// deref turns pointer variants into values so handlers only see one shape. A nil
// request or nil pointer reports false.
func deref(req request.Request) (request.Request, bool) {
	switch r := req.(type) {
	case nil:
		return nil, false
	case *request.HTTPRequest:
		if r == nil {
			return nil, false
		}
		return *r, true
	case *request.WebSocketRequest:
		if r == nil {
			return nil, false
		}
		return *r, true
	case *request.SSERequest:
		if r == nil {
			return nil, false
		}
		return *r, true
	case *request.GRPCRequest:
		if r == nil {
			return nil, false
		}
		return *r, true
	}
	return req, true
}

func (e *Executor) executeHTTP(ctx context.Context, r request.Request) (request.Response, error) {
	req, ok := r.(request.HTTPRequest)
	if !ok {
		return nil, newError(KindFailedExecution, ErrUnsupportedRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, newError(KindHTTPRequestBuild, err)
	}
	if e.transports.HTTP == nil {
		return nil, newError(KindFailedExecution, ErrNoTransport)
	}

	body, err := e.transports.HTTP.Fetch(ctx, req.URL())
	if err != nil {
		return nil, newError(KindFailedExecution, err)
	}

	// The fetch capability only yields a body: status and headers are synthesized.
	resp, err := request.NewHTTPResponseBuilder().
		Status(200).
		Body(body).
		Build()
	if err != nil {
		return nil, newError(KindHTTPResponseBuild, err)
	}
	return resp, nil
}

func (e *Executor) executeWebSocket(ctx context.Context, r request.Request) (request.Response, error) {
	req, ok := r.(request.WebSocketRequest)
	if !ok {
		return nil, newError(KindFailedExecution, ErrUnsupportedRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, newError(KindRequestBuild, err)
	}
	if e.transports.WebSocket == nil {
		return nil, newError(KindFailedExecution, ErrNoTransport)
	}

	replies, err := e.transports.WebSocket.Exchange(ctx, req.URL(), req.Headers(), req.Messages())
	if err != nil {
		return nil, newError(KindFailedExecution, err)
	}
	return request.NewWebSocketResponse(replies), nil
}

func (e *Executor) executeSSE(ctx context.Context, r request.Request) (request.Response, error) {
	req, ok := r.(request.SSERequest)
	if !ok {
		return nil, newError(KindFailedExecution, ErrUnsupportedRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, newError(KindRequestBuild, err)
	}
	if e.transports.SSE == nil {
		return nil, newError(KindFailedExecution, ErrNoTransport)
	}

	events, err := e.transports.SSE.Stream(ctx, req.URL(), req.Headers(), req.MaxEvents())
	if err != nil {
		return nil, newError(KindFailedExecution, err)
	}
	out := make([]request.Event, len(events))
	for i, ev := range events {
		out[i] = request.Event{ID: ev.ID, Event: ev.Event, Data: ev.Data}
	}
	return request.NewSSEResponse(out), nil
}

func (e *Executor) executeGRPC(ctx context.Context, r request.Request) (request.Response, error) {
	req, ok := r.(request.GRPCRequest)
	if !ok {
		return nil, newError(KindFailedExecution, ErrUnsupportedRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, newError(KindRequestBuild, err)
	}
	if e.transports.GRPC == nil {
		return nil, newError(KindFailedExecution, ErrNoTransport)
	}

	reply, err := e.transports.GRPC.Invoke(ctx, transport.Call{
		Target:    req.Target(),
		ProtoFile: req.ProtoFile(),
		Service:   req.Service(),
		Method:    req.Method(),
		Message:   req.Message(),
		Metadata:  req.Metadata(),
	})
	if err != nil {
		return nil, newError(KindFailedExecution, err)
	}
	return request.NewGRPCResponse(reply.Code, reply.Message), nil
}
