package extractor

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		body string
		rule Extractor
		want string
	}{
		{
			name: "json simple",
			body: `{"id": 123, "name": "John"}`,
			rule: Extractor{Variable: "user_id", JSONPath: "id"},
			want: "123",
		},
		{
			name: "json nested",
			body: `{"user": {"profile": {"name": "Alice"}}}`,
			rule: Extractor{Variable: "name", JSONPath: "user.profile.name"},
			want: "Alice",
		},
		{
			name: "json array index",
			body: `{"items": [{"id": 1}, {"id": 2}]}`,
			rule: Extractor{Variable: "first", JSONPath: "items.0.id"},
			want: "1",
		},
		{
			name: "json dollar prefix",
			body: `{"id": 456}`,
			rule: Extractor{Variable: "id", JSONPath: "$.id"},
			want: "456",
		},
		{
			name: "json whole document",
			body: `{"a":1}`,
			rule: Extractor{Variable: "doc", JSONPath: "$"},
			want: `{"a":1}`,
		},
		{
			name: "regex capture group",
			body: `Response: ID=789`,
			rule: Extractor{Variable: "id", Regex: `ID=(\d+)`},
			want: "789",
		},
		{
			name: "regex full match",
			body: `The code is 12345`,
			rule: Extractor{Variable: "code", Regex: `\d+`},
			want: "12345",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule.Extract(tt.body)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		rule Extractor
		want error
	}{
		{name: "missing field", body: `{"id": 1}`, rule: Extractor{Variable: "x", JSONPath: "missing"}, want: ErrNotFound},
		{name: "body not json", body: `plain text`, rule: Extractor{Variable: "x", JSONPath: "id"}, want: ErrNotFound},
		{name: "regex no match", body: `no numbers here`, rule: Extractor{Variable: "x", Regex: `\d+`}, want: ErrNotFound},
		{name: "invalid regex", body: `text`, rule: Extractor{Variable: "x", Regex: `[invalid(`}, want: ErrInvalidRule},
		{name: "empty rule", body: `text`, rule: Extractor{Variable: "x"}, want: ErrInvalidRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.rule.Extract(tt.body); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Extractor
		wantErr bool
	}{
		{name: "json", rule: Extractor{Variable: "a", JSONPath: "id"}},
		{name: "regex", rule: Extractor{Variable: "a", Regex: `id=(\w+)`}},
		{name: "no variable", rule: Extractor{JSONPath: "id"}, wantErr: true},
		{name: "both", rule: Extractor{Variable: "a", JSONPath: "id", Regex: "x"}, wantErr: true},
		{name: "neither", rule: Extractor{Variable: "a"}, wantErr: true},
		{name: "bad regex", rule: Extractor{Variable: "a", Regex: "("}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRule) {
				t.Fatalf("expected ErrInvalidRule, got %v", err)
			}
		})
	}
}

func TestExtractAll(t *testing.T) {
	body := `{"user": {"id": 999, "email": "test@example.com"}, "status": "active"}`
	got, err := ExtractAll(body, []Extractor{
		{Variable: "user_id", JSONPath: "user.id"},
		{Variable: "email", JSONPath: "$.user.email"},
		{Variable: "status", Regex: `"status":\s*"(\w+)"`},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"user_id": "999", "email": "test@example.com", "status": "active"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, got[k])
		}
	}
}

func TestExtractAllStopsAtFirstFailure(t *testing.T) {
	got, err := ExtractAll(`{"a": 1}`, []Extractor{
		{Variable: "a", JSONPath: "a"},
		{Variable: "b", JSONPath: "b"},
		{Variable: "c", JSONPath: "a"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got["a"] != "1" {
		t.Fatalf("expected values before the failure to be kept, got %v", got)
	}
	if _, ok := got["c"]; ok {
		t.Fatalf("expected extraction to stop, got %v", got)
	}
}

func TestLookup(t *testing.T) {
	if v, ok := Lookup(`{"a":{"b":[1,2]}}`, "a.b"); !ok || v != "[1,2]" {
		t.Fatalf("expected raw array, got %q (%v)", v, ok)
	}
	if _, ok := Lookup(`not json`, "a"); ok {
		t.Fatal("expected lookup on invalid JSON to fail")
	}
}
