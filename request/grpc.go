package request

import (
	"fmt"
	"maps"
	"strings"
)

// GRPCRequest is a unary RPC described by a .proto file and a JSON payload.
type GRPCRequest struct {
	target    string
	protoFile string
	service   string
	method    string
	message   string
	metadata  map[string]string
}

func (GRPCRequest) Kind() Kind { return KindGRPC }
func (GRPCRequest) isRequest() {}

func (r GRPCRequest) Target() string { return r.target }
func (r GRPCRequest) ProtoFile() string { return r.protoFile }
func (r GRPCRequest) Service() string { return r.service }
func (r GRPCRequest) Method() string { return r.method }

// Message returns the JSON encoded request message.
func (r GRPCRequest) Message() string { return r.message }

func (r GRPCRequest) Metadata() map[string]string { return cloneHeaders(r.metadata) }

func (r GRPCRequest) Validate() error {
	if !validURL(r.target) {
		return ErrInvalidURL
	}
	if r.service == "" || r.method == "" {
		return fmt.Errorf("%w: service and method are required", ErrInvalidMethod)
	}
	if r.protoFile == "" {
		return fmt.Errorf("%w: proto file is required", ErrInvalidMethod)
	}
	return nil
}

func (r GRPCRequest) Equal(other GRPCRequest) bool {
	return r.target == other.target &&
		r.protoFile == other.protoFile &&
		r.service == other.service &&
		r.method == other.method &&
		r.message == other.message &&
		maps.Equal(r.metadata, other.metadata)
}

// GRPCBuilder accumulates a GRPCRequest. The message defaults to "{}".
type GRPCBuilder struct {
	target    string
	protoFile string
	service   string
	method    string
	message   string
	metadata  map[string]string
}

func GRPC(target string) *GRPCBuilder {
	return &GRPCBuilder{target: target, message: "{}", metadata: map[string]string{}}
}

func (b *GRPCBuilder) Proto(file string) *GRPCBuilder {
	b.protoFile = file
	return b
}

func (b *GRPCBuilder) Method(service, method string) *GRPCBuilder {
	b.service = service
	b.method = method
	return b
}

func (b *GRPCBuilder) Message(json string) *GRPCBuilder {
	b.message = json
	return b
}

func (b *GRPCBuilder) Metadata(key, value string) *GRPCBuilder {
	b.metadata[strings.ToLower(strings.TrimSpace(key))] = value
	return b
}

func (b *GRPCBuilder) Build() (GRPCRequest, error) {
	req := GRPCRequest{
		target:    strings.TrimSpace(b.target),
		protoFile: strings.TrimSpace(b.protoFile),
		service:   strings.TrimSpace(b.service),
		method:    strings.TrimSpace(b.method),
		message:   b.message,
		metadata:  cloneHeaders(b.metadata),
	}
	if err := req.Validate(); err != nil {
		return GRPCRequest{}, err
	}
	return req, nil
}

// GRPCResponse carries the status code name and the JSON encoded reply.
type GRPCResponse struct {
	code    string
	message string
}

func NewGRPCResponse(code, message string) GRPCResponse {
	return GRPCResponse{code: code, message: message}
}

func (GRPCResponse) Kind() Kind { return KindGRPC }
func (GRPCResponse) isResponse() {}

func (r GRPCResponse) Code() string { return r.code }
func (r GRPCResponse) Message() string { return r.message }

func (r GRPCResponse) Equal(other GRPCResponse) bool {
	return r.code == other.code && r.message == other.message
}
