package scenariofile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
scenarios:
  - name: login
    steps:
      - name: authenticate
        method: get
        url: "{{base}}/login?user={{user}}"
        extract:
          - variable: token
            json_path: $.token
      - url: "{{base}}/me"
        expect:
          body_contains: alice
          json:
            - path: user.Name
              equals: alice
  - name: stream
    steps:
      - protocol: SSE
        url: http://localhost/events
`

func TestParseYAML(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleYAML), "yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(f.Scenarios))
	}

	login := f.Scenarios[0]
	if login.Name != "login" || len(login.Steps) != 2 {
		t.Fatalf("unexpected first scenario %+v", login)
	}
	first := login.Steps[0]
	if first.Protocol != ProtocolHTTP || first.Method != "GET" {
		t.Errorf("expected normalized http GET step, got %s %s", first.Protocol, first.Method)
	}
	if len(first.Extract) != 1 || first.Extract[0].JSONPath != "$.token" {
		t.Errorf("unexpected extract rules %+v", first.Extract)
	}
	if login.Steps[1].Method != "GET" {
		t.Errorf("expected method to default to GET, got %q", login.Steps[1].Method)
	}
	if je := login.Steps[1].Expect.JSON; len(je) != 1 || je[0].Path != "user.Name" {
		t.Errorf("expected case preserved json path, got %+v", je)
	}

	stream := f.Scenarios[1].Steps[0]
	if stream.Protocol != ProtocolSSE || stream.MaxEvents != 1 {
		t.Errorf("expected sse step with default max events, got %s %d", stream.Protocol, stream.MaxEvents)
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"scenarios":[{"name":"ws","steps":[{"protocol":"websocket","url":"ws://localhost/echo","messages":["ping","pong"]}]}]}`
	f, err := Parse(strings.NewReader(doc), "json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	step := f.Scenarios[0].Steps[0]
	if step.Protocol != ProtocolWebSocket || len(step.Messages) != 2 {
		t.Fatalf("unexpected step %+v", step)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "no scenarios", doc: "scenarios: []", want: "no scenarios"},
		{name: "missing name", doc: "scenarios:\n  - steps:\n      - url: http://x", want: "name is required"},
		{name: "no steps", doc: "scenarios:\n  - name: a", want: "at least one step"},
		{name: "missing url", doc: "scenarios:\n  - name: a\n    steps:\n      - method: GET", want: "url is required"},
		{name: "bad method", doc: "scenarios:\n  - name: a\n    steps:\n      - url: http://x\n        method: BREW", want: "invalid method"},
		{name: "post on http", doc: "scenarios:\n  - name: a\n    steps:\n      - url: http://x\n        method: POST", want: "method POST is not supported on http steps"},
		{name: "headers on http", doc: "scenarios:\n  - name: a\n    steps:\n      - url: http://x\n        headers:\n          Authorization: Bearer abc", want: "headers are not supported on http steps"},
		{name: "unknown protocol", doc: "scenarios:\n  - name: a\n    steps:\n      - url: http://x\n        protocol: ftp", want: "unknown protocol"},
		{name: "grpc missing rpc", doc: "scenarios:\n  - name: a\n    steps:\n      - url: localhost:1\n        protocol: grpc\n        service: s", want: "required for grpc"},
		{name: "code on http", doc: "scenarios:\n  - name: a\n    steps:\n      - url: http://x\n        expect:\n          code: OK", want: "grpc steps only"},
		{name: "bad extractor", doc: "scenarios:\n  - name: a\n    steps:\n      - url: http://x\n        extract:\n          - variable: v", want: "json_path or regex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc), "yaml")
			if !errors.Is(err, ErrInvalidFile) {
				t.Fatalf("expected ErrInvalidFile, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadResolvesProtoFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grpc.yaml")
	doc := `
scenarios:
  - name: health
    steps:
      - protocol: grpc
        url: localhost:50051
        proto_file: protos/health.proto
        service: grpc.health.v1.Health
        rpc: Check
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Join(dir, "protos", "health.proto")
	if got := f.Scenarios[0].Steps[0].ProtoFile; got != want {
		t.Fatalf("expected proto file %s, got %s", want, got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
