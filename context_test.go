package granita_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/torosent/granita"
	"github.com/torosent/granita/request"
	"github.com/torosent/granita/transport"
)

func TestSendPassesResponseThrough(t *testing.T) {
	c := granita.NewContext(fakeTransports("success", nil))
	req, _ := request.GET("http://localhost/").Build()

	resp, err := c.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	want, _ := request.NewHTTPResponseBuilder().Status(200).Body("success").Build()
	if !resp.(request.HTTPResponse).Equal(want) {
		t.Fatalf("response = %+v, want %+v", resp, want)
	}
}

func TestSendCollapsesErrors(t *testing.T) {
	tests := []struct {
		name string
		set  transport.Set
		req  request.Request
	}{
		{
			name: "transport failure",
			set: transport.Set{HTTP: transport.FetcherFunc(func(ctx context.Context, url string) (string, error) {
				return "", transport.NewError(transport.KindURI, url, errors.New("bad"))
			})},
			req: func() request.Request { r, _ := request.GET("::").Build(); return r }(),
		},
		{
			name: "zero value request",
			set:  transport.Set{HTTP: transport.FetcherFunc(func(ctx context.Context, url string) (string, error) { return "", nil })},
			req:  request.HTTPRequest{},
		},
		{
			name: "nil request",
			set:  transport.Set{},
			req:  nil,
		},
		{
			name: "missing capability",
			set:  transport.Set{},
			req:  func() request.Request { r, _ := request.SSE("http://localhost/events").Build(); return r }(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &syncLogger{}
			c := granita.NewContext(granita.WithTransports(tt.set), granita.WithFailureLogger(logger))
			resp, err := c.Send(context.Background(), tt.req)
			if resp != nil {
				t.Errorf("response = %v, want nil", resp)
			}
			if err != granita.ErrFailedRequestExecution {
				t.Fatalf("Send() error = %v, want ErrFailedRequestExecution", err)
			}
			if len(logger.errs) != 1 {
				t.Fatalf("logged %d failures, want 1", len(logger.errs))
			}
		})
	}
}

type kindRecorder struct {
	kinds []request.Kind
}

func (r *kindRecorder) RecordRequest(kind request.Kind, latency time.Duration, err error) {
	r.kinds = append(r.kinds, kind)
}

func TestSendOnUnconstructedContext(t *testing.T) {
	req, err := request.GET("http://localhost/").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	tests := []struct {
		name string
		c    *granita.Context
	}{
		{name: "zero value", c: &granita.Context{}},
		{name: "nil pointer", c: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.c.Send(context.Background(), req)
			if !errors.Is(err, granita.ErrFailedRequestExecution) {
				t.Fatalf("Send() error = %v, want ErrFailedRequestExecution", err)
			}
			if resp != nil {
				t.Errorf("Send() response = %+v, want nil", resp)
			}
		})
	}
}

func TestSendRecordsEveryRequest(t *testing.T) {
	rec := &kindRecorder{}
	c := granita.NewContext(granita.WithRecorder(rec), granita.WithTransports(transport.Set{
		HTTP: transport.FetcherFunc(func(ctx context.Context, url string) (string, error) { return "ok", nil }),
		WebSocket: transport.ExchangerFunc(func(ctx context.Context, url string, h map[string]string, msgs []string) ([]string, error) {
			return msgs, nil
		}),
	}))

	httpReq, _ := request.GET("http://localhost/").Build()
	wsReq, _ := request.WebSocket("ws://localhost/").Message("hi").Build()
	if _, err := c.Send(context.Background(), httpReq); err != nil {
		t.Fatalf("Send(http) error = %v", err)
	}
	resp, err := c.Send(context.Background(), wsReq)
	if err != nil {
		t.Fatalf("Send(ws) error = %v", err)
	}
	if replies := resp.(request.WebSocketResponse).Replies(); len(replies) != 1 || replies[0] != "hi" {
		t.Fatalf("replies = %v", replies)
	}
	if len(rec.kinds) != 2 || rec.kinds[0] != request.KindHTTP || rec.kinds[1] != request.KindWebSocket {
		t.Fatalf("recorded kinds = %v", rec.kinds)
	}
}

func TestDefaultTransportsCoverEveryCapability(t *testing.T) {
	set := granita.DefaultTransports(time.Second)
	if set.HTTP == nil || set.WebSocket == nil || set.SSE == nil || set.GRPC == nil {
		t.Fatalf("default set has a nil capability: %+v", set)
	}
}
