// Package grpcclient implements the unary gRPC transport used for gRPC requests.
package grpcclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/torosent/granita/internal/tracing"
)

// Client invokes a single method over a shared connection.
type Client struct {
	conn       *grpc.ClientConn
	service    string
	method     string
	md         metadata.MD
	timeout    time.Duration
	mu         sync.Mutex
	lastStatus string
}

// Config holds configuration for the gRPC client
type Config struct {
	Target   string
	Service  string
	Method   string
	Metadata map[string]string
	Timeout  time.Duration
	UseTLS   bool
	Insecure bool
}

// Dial creates a connection for cfg.Target. The connection is established lazily on
// the first call.
func Dial(cfg Config) (*grpc.ClientConn, error) {
	var opts []grpc.DialOption
	if cfg.UseTLS {
		if cfg.Insecure {
			creds := credentials.NewTLS(&tls.Config{InsecureSkipVerify: true})
			opts = append(opts, grpc.WithTransportCredentials(creds))
		} else {
			creds := credentials.NewClientTLSFromCert(nil, "")
			opts = append(opts, grpc.WithTransportCredentials(creds))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	return grpc.NewClient(cfg.Target, opts...)
}

// NewClientWithConn creates a client that uses conn. Closing the client does not close
// the connection.
func NewClientWithConn(conn *grpc.ClientConn, cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		conn:       conn,
		service:    cfg.Service,
		method:     cfg.Method,
		md:         metadata.New(cfg.Metadata),
		timeout:    cfg.Timeout,
		lastStatus: "UNSET",
	}
}

// FullMethod returns the method path in /service/method form.
func (c *Client) FullMethod() string {
	return fmt.Sprintf("/%s/%s", c.service, c.method)
}

// Invoke makes a unary RPC call
func (c *Client) Invoke(ctx context.Context, req proto.Message, resp proto.Message) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if resp == nil {
		return fmt.Errorf("response cannot be nil")
	}
	if c.conn == nil {
		return fmt.Errorf("client not connected")
	}

	md := c.md.Copy()
	tracing.InjectGRPCMetadata(ctx, md)
	if len(md) > 0 {
		ctx = metadata.NewOutgoingContext(ctx, md)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err := c.conn.Invoke(ctx, c.FullMethod(), req, resp)

	c.mu.Lock()
	c.lastStatus = status.Code(err).String()
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("RPC call failed: %w", err)
	}
	return nil
}

// LastStatus returns the status code name of the most recent call, or "UNSET".
func (c *Client) LastStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStatus
}
