package har

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleHAR = `{
	"log": {
		"version": "1.2",
		"creator": {"name": "Firefox", "version": "128.0"},
		"entries": [
			{
				"startedDateTime": "2025-01-01T00:00:00.000Z",
				"request": {
					"method": "GET",
					"url": "https://api.example.com/users?page=1",
					"headers": [
						{"name": "Accept", "value": "application/json"},
						{"name": "Connection", "value": "keep-alive"}
					]
				},
				"response": {"status": 200, "statusText": "OK"}
			},
			{
				"startedDateTime": "2025-01-01T00:00:01.000Z",
				"request": {
					"method": "POST",
					"url": "https://api.example.com/users",
					"headers": [],
					"postData": {"mimeType": "application/json", "text": "{\"name\":\"ada\"}"}
				},
				"response": {"status": 201, "statusText": "Created"}
			}
		]
	}
}`

func TestParse(t *testing.T) {
	har, err := Parse(strings.NewReader(sampleHAR))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if har.Log.Version != "1.2" {
		t.Errorf("expected version 1.2, got %s", har.Log.Version)
	}
	if har.Log.Creator == nil || har.Log.Creator.Name != "Firefox" {
		t.Errorf("unexpected creator %+v", har.Log.Creator)
	}
	if len(har.Log.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(har.Log.Entries))
	}
	second := har.Log.Entries[1]
	if second.Request.Method != "POST" || second.Request.URL != "https://api.example.com/users" {
		t.Errorf("unexpected request %+v", second.Request)
	}
	if second.Response.Status != 201 {
		t.Errorf("expected status 201, got %d", second.Response.Status)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "invalid json", input: `{"log": `},
		{name: "missing log", input: `{"notALog": {}}`},
		{name: "future version", input: `{"log": {"version": "2.0", "entries": []}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			har, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if har != nil {
				t.Error("expected nil HAR on error")
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{version: "", wantErr: false},
		{version: "1.1", wantErr: false},
		{version: "1.2", wantErr: false},
		{version: "2.0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("v"+tt.version, func(t *testing.T) {
			doc := `{"log": {"version": "` + tt.version + `", "entries": []}}`
			_, err := Parse(strings.NewReader(doc))
			if got := errors.Is(err, ErrUnsupportedVersion); got != tt.wantErr {
				t.Fatalf("Parse() error = %v, want unsupported version: %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseMissingLogWrapsErrNoLog(t *testing.T) {
	_, err := Parse(strings.NewReader(`{}`))
	if !errors.Is(err, ErrNoLog) {
		t.Fatalf("expected ErrNoLog, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestParseReaderError(t *testing.T) {
	if _, err := Parse(failingReader{}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected reader error, got %v", err)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.har")
	if err := os.WriteFile(path, []byte(sampleHAR), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	har, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(har.Log.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(har.Log.Entries))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.har")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
