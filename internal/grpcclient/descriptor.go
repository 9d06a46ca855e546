package grpcclient

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
)

// LoadMethodDescriptor parses protoPath and finds method in service. The service may be
// given fully qualified or by its short name.
func LoadMethodDescriptor(protoPath, service, method string) (*desc.MethodDescriptor, error) {
	protoPath = strings.TrimSpace(protoPath)
	if protoPath == "" {
		return nil, fmt.Errorf("proto file is required")
	}
	parser := protoparse.Parser{
		ImportPaths: []string{filepath.Dir(protoPath)},
	}
	files, err := parser.ParseFiles(filepath.Base(protoPath))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no descriptors parsed from %s", protoPath)
	}
	serviceName := strings.TrimSpace(service)
	methodName := strings.TrimSpace(method)
	for _, file := range files {
		for _, svc := range file.GetServices() {
			if matchesServiceName(svc, serviceName) {
				if m := svc.FindMethodByName(methodName); m != nil {
					return m, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("method %s not found in service %s", methodName, serviceName)
}

func matchesServiceName(svc *desc.ServiceDescriptor, target string) bool {
	if target == "" {
		return false
	}
	if svc.GetFullyQualifiedName() == target {
		return true
	}
	return svc.GetName() == target || strings.HasSuffix(target, "."+svc.GetName())
}

// BuildDynamicRequest decodes a JSON payload into the method's input type. A blank
// payload is the empty message.
func BuildDynamicRequest(method *desc.MethodDescriptor, payload string) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(method.GetInputType())
	body := strings.TrimSpace(payload)
	if body == "" {
		body = "{}"
	}
	if err := msg.UnmarshalJSON([]byte(body)); err != nil {
		return nil, err
	}
	return msg, nil
}
