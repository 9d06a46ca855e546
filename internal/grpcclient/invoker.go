package grpcclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"

	"github.com/torosent/granita/transport"
)

// Invoker implements transport.Invoker. Connections are shared per target and method
// descriptors are cached per proto file, service and method.
type Invoker struct {
	Timeout  time.Duration
	UseTLS   bool
	Insecure bool

	conns sync.Map // map[string]*grpc.ClientConn
	descs sync.Map // map[string]*desc.MethodDescriptor
}

// Invoke performs call and returns the status code name and the JSON encoded reply.
func (i *Invoker) Invoke(ctx context.Context, call transport.Call) (transport.Reply, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target := strings.TrimSpace(call.Target)
	if target == "" {
		return transport.Reply{}, transport.NewError(transport.KindURI, call.Target, errors.New("empty target"))
	}

	methodDesc, err := i.methodDescriptor(call)
	if err != nil {
		return transport.Reply{}, transport.NewError(transport.KindProtocol, target, err)
	}
	reqMsg, err := BuildDynamicRequest(methodDesc, call.Message)
	if err != nil {
		return transport.Reply{}, transport.NewError(transport.KindDecode, target, err)
	}
	respMsg := dynamic.NewMessage(methodDesc.GetOutputType())

	cfg := Config{
		Target:   target,
		Service:  call.Service,
		Method:   call.Method,
		Metadata: call.Metadata,
		Timeout:  i.Timeout,
		UseTLS:   i.UseTLS,
		Insecure: i.Insecure,
	}
	conn, err := i.conn(cfg)
	if err != nil {
		return transport.Reply{}, transport.NewError(transport.KindConnect, target, err)
	}

	client := NewClientWithConn(conn, cfg)
	if err := client.Invoke(ctx, protoadapt.MessageV2Of(reqMsg), protoadapt.MessageV2Of(respMsg)); err != nil {
		if status.Code(err) == codes.Unavailable {
			return transport.Reply{}, transport.NewError(transport.KindConnect, target, err)
		}
		return transport.Reply{}, transport.NewError(transport.KindProtocol, target, err)
	}

	body, err := respMsg.MarshalJSON()
	if err != nil {
		return transport.Reply{}, transport.NewError(transport.KindDecode, target, err)
	}
	return transport.Reply{Code: client.LastStatus(), Message: string(body)}, nil
}

func (i *Invoker) methodDescriptor(call transport.Call) (*desc.MethodDescriptor, error) {
	key := call.ProtoFile + "|" + call.Service + "|" + call.Method
	if v, ok := i.descs.Load(key); ok {
		return v.(*desc.MethodDescriptor), nil
	}
	md, err := LoadMethodDescriptor(call.ProtoFile, call.Service, call.Method)
	if err != nil {
		return nil, err
	}
	actual, _ := i.descs.LoadOrStore(key, md)
	return actual.(*desc.MethodDescriptor), nil
}

func (i *Invoker) conn(cfg Config) (*grpc.ClientConn, error) {
	if v, ok := i.conns.Load(cfg.Target); ok {
		return v.(*grpc.ClientConn), nil
	}
	newConn, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	if actual, loaded := i.conns.LoadOrStore(cfg.Target, newConn); loaded {
		newConn.Close()
		return actual.(*grpc.ClientConn), nil
	}
	return newConn, nil
}

// Close releases every pooled connection.
func (i *Invoker) Close() error {
	i.conns.Range(func(key, value any) bool {
		if conn, ok := value.(*grpc.ClientConn); ok {
			conn.Close()
		}
		i.conns.Delete(key)
		return true
	})
	return nil
}
