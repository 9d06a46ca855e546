package granita

import (
	"context"
	"time"

	"github.com/torosent/granita/internal/executor"
	"github.com/torosent/granita/internal/grpcclient"
	"github.com/torosent/granita/internal/httpclient"
	"github.com/torosent/granita/internal/sse"
	"github.com/torosent/granita/internal/websocket"
	"github.com/torosent/granita/request"
	"github.com/torosent/granita/transport"
)

// DefaultTimeout bounds each production transport call.
const DefaultTimeout = 30 * time.Second

// DefaultTransports returns the production transport set. A zero timeout disables the
// per-call limit.
func DefaultTransports(timeout time.Duration) transport.Set {
	return transport.Set{
		HTTP:      httpclient.NewFetcher(timeout),
		WebSocket: &websocket.Exchanger{HandshakeTimeout: timeout, ReadTimeout: timeout},
		SSE:       &sse.Streamer{Timeout: timeout},
		GRPC:      &grpcclient.Invoker{Timeout: timeout},
	}
}

// Context is the shared execution context handed to every scenario of a run. It is
// read-only after construction and safe to share. The zero value is not usable; call
// NewContext. Send on a zero or nil Context fails with ErrFailedRequestExecution.
type Context struct {
	handler executor.Handler
}

// NewContext creates a Context over the default transports unless WithTransports is
// given.
func NewContext(opts ...Option) *Context {
	return newContext(buildOptions(opts))
}

func newContext(o options) *Context {
	set := DefaultTransports(DefaultTimeout)
	if o.transports != nil {
		set = *o.transports
	}

	var h executor.Handler = executor.New(set)
	h = executor.WithLogging(h, o.failureLogger)
	h = executor.WithMetrics(h, o.recorder)
	h = executor.WithTracing(h, o.tracer)
	return &Context{handler: h}
}

// Send executes req. Any failure is reported as ErrFailedRequestExecution.
func (c *Context) Send(ctx context.Context, req request.Request) (request.Response, error) {
	if c == nil || c.handler == nil {
		return nil, ErrFailedRequestExecution
	}
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := c.handler.Execute(ctx, req)
	if err != nil {
		return nil, ErrFailedRequestExecution
	}
	return resp, nil
}
