package executor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/granita/internal/tracing"
	"github.com/torosent/granita/request"
)

// FailureLogger logs failed requests.
type FailureLogger interface {
	LogFailure(err error)
}

// Recorder observes the latency and outcome of every request.
type Recorder interface {
	RecordRequest(kind request.Kind, latency time.Duration, err error)
}

// WithLogging wraps h to hand every failure to logger.
func WithLogging(h Handler, logger FailureLogger) Handler {
	if logger == nil {
		return h
	}
	return HandlerFunc(func(ctx context.Context, req request.Request) (request.Response, error) {
		resp, err := h.Execute(ctx, req)
		if err != nil {
			logger.LogFailure(err)
		}
		return resp, err
	})
}

// WithMetrics wraps h to record each request with rec.
func WithMetrics(h Handler, rec Recorder) Handler {
	if rec == nil {
		return h
	}
	return HandlerFunc(func(ctx context.Context, req request.Request) (request.Response, error) {
		start := time.Now()
		resp, err := h.Execute(ctx, req)
		rec.RecordRequest(kindOf(req), time.Since(start), err)
		return resp, err
	})
}

// WithTracing wraps h to run each request inside a client span.
func WithTracing(h Handler, tracer trace.Tracer) Handler {
	if tracer == nil {
		return h
	}
	return HandlerFunc(func(ctx context.Context, req request.Request) (request.Response, error) {
		ctx, span := tracing.StartRequestSpan(ctx, tracer, string(kindOf(req)), endpointOf(req))
		resp, err := h.Execute(ctx, req)
		tracing.EndSpan(span, err, responseAttrs(resp)...)
		return resp, err
	})
}

func kindOf(req request.Request) request.Kind {
	if r, ok := deref(req); ok {
		return r.Kind()
	}
	return "unknown"
}

func endpointOf(req request.Request) string {
	r, ok := deref(req)
	if !ok {
		return ""
	}
	switch v := r.(type) {
	case request.HTTPRequest:
		return string(v.Method()) + " " + v.URL()
	case request.WebSocketRequest:
		return v.URL()
	case request.SSERequest:
		return v.URL()
	case request.GRPCRequest:
		return v.Service() + "/" + v.Method()
	}
	return ""
}

func responseAttrs(resp request.Response) []attribute.KeyValue {
	switch v := resp.(type) {
	case request.HTTPResponse:
		return []attribute.KeyValue{attribute.Int("http.response.status_code", int(v.Status()))}
	case request.GRPCResponse:
		return []attribute.KeyValue{attribute.String("rpc.grpc.status_code", v.Code())}
	}
	return nil
}
