package variables

import (
	"context"
	"testing"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewStore()
	store.Set("username", "john")
	store.Set("token", "abc123")

	value, ok := store.Get("username")
	if !ok {
		t.Fatal("expected to find 'username' key")
	}
	if value != "john" {
		t.Errorf("expected 'john', got %q", value)
	}

	value, ok = store.Get("token")
	if !ok {
		t.Fatal("expected to find 'token' key")
	}
	if value != "abc123" {
		t.Errorf("expected 'abc123', got %q", value)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewStore()
	store.Set("username", "john")

	value, ok := store.Get("missing_key")
	if ok {
		t.Errorf("expected ok=false for missing key, got ok=true with value %q", value)
	}
	if value != "" {
		t.Errorf("expected empty string for missing key, got %q", value)
	}
}

func TestMemoryStore_GetAll(t *testing.T) {
	store := NewStore()
	store.Set("username", "john")
	store.Set("token", "abc123")
	store.Set("id", "42")

	all := store.GetAll()
	if len(all) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(all))
	}

	expectedValues := map[string]string{
		"username": "john",
		"token":    "abc123",
		"id":       "42",
	}

	for key, expectedValue := range expectedValues {
		if actual, ok := all[key]; !ok || actual != expectedValue {
			t.Errorf("expected all[%q]=%q, got %q (ok=%v)", key, expectedValue, actual, ok)
		}
	}

	// Verify it's a copy by modifying the returned map
	all["username"] = "modified"
	value, _ := store.Get("username")
	if value != "john" {
		t.Errorf("store was affected by modification to returned map, expected 'john', got %q", value)
	}
}

func TestExpand(t *testing.T) {
	store := NewStore()
	store.Set("user_id", "42")
	store.Set("token", "abc")

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "no placeholders", template: "http://localhost/users", want: "http://localhost/users"},
		{name: "single", template: "http://localhost/users/{{user_id}}", want: "http://localhost/users/42"},
		{name: "multiple", template: "{{user_id}}:{{token}}", want: "42:abc"},
		{name: "spaces inside braces", template: "{{ user_id }}", want: "42"},
		{name: "unknown kept", template: "/items/{{item_id}}", want: "/items/{{item_id}}"},
		{name: "default used", template: "/items/{{item_id|7}}", want: "/items/7"},
		{name: "empty default", template: "/items/{{item_id|}}", want: "/items/"},
		{name: "value beats default", template: "{{user_id|0}}", want: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expand(tt.template, store); got != tt.want {
				t.Fatalf("Expand(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestExpandNilStore(t *testing.T) {
	if got := Expand("{{a|b}}/{{c}}", nil); got != "b/{{c}}" {
		t.Fatalf("unexpected expansion %q", got)
	}
}

func TestExpandMap(t *testing.T) {
	store := NewStore()
	store.Set("token", "xyz")

	got := ExpandMap(map[string]string{"Authorization": "Bearer {{token}}", "{{token}}": "static"}, store)
	if got["Authorization"] != "Bearer xyz" {
		t.Fatalf("expected expanded header, got %v", got)
	}
	if got["{{token}}"] != "static" {
		t.Fatalf("expected keys to be left alone, got %v", got)
	}
	if ExpandMap(nil, store) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestUnresolved(t *testing.T) {
	store := NewStore()
	store.Set("known", "1")

	missing := Unresolved("{{known}} {{missing}} {{fallback|x}}", store)
	if len(missing) != 1 || missing[0] != "missing" {
		t.Fatalf("expected [missing], got %v", missing)
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil store in empty context")
	}
	store := NewStore()
	ctx := NewContext(context.Background(), store)
	if FromContext(ctx) != store {
		t.Fatal("expected the attached store")
	}
}
