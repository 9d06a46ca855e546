// Package variables holds the values extracted by earlier steps of a scenario and
// substitutes them into later requests.
package variables

import (
	"context"
	"maps"
	"regexp"
)

// Store holds variables for one scenario execution.
type Store interface {
	Set(key, value string)

	// Get returns ("", false) when key is not present.
	Get(key string) (string, bool)

	// GetAll returns a copy of all stored variables.
	GetAll() map[string]string
}

// MemoryStore is a map-based Store. Steps of a scenario run sequentially, so it is not
// guarded by a mutex.
type MemoryStore struct {
	variables map[string]string
}

func NewStore() Store {
	return &MemoryStore{
		variables: make(map[string]string),
	}
}

func (m *MemoryStore) Set(key, value string) {
	m.variables[key] = value
}

func (m *MemoryStore) Get(key string) (string, bool) {
	value, ok := m.variables[key]
	return value, ok
}

func (m *MemoryStore) GetAll() map[string]string {
	return maps.Clone(m.variables)
}

// placeholderRegex matches {{key}} and {{key|default}}.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([^}|\s]+)\s*(?:\|([^}]*))?\}\}`)

// Expand replaces placeholders in template with values from store. A placeholder with
// a default ({{key|fallback}}, or {{key|}} for empty) uses the default when key is
// unset; one without a default is left as is.
func Expand(template string, store Store) string {
	if store == nil {
		store = NewStore()
	}
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		parts := placeholderRegex.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if val, ok := store.Get(parts[1]); ok {
			return val
		}
		// parts[2] is "" both for {{key|}} and {{key}}; tell them apart by the pipe.
		if hasDefault(match) {
			return parts[2]
		}
		return match
	})
}

func hasDefault(match string) bool {
	for i := 0; i < len(match); i++ {
		if match[i] == '|' {
			return true
		}
	}
	return false
}

// ExpandMap applies Expand to every value of values. Keys are not expanded.
func ExpandMap(values map[string]string, store Store) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = Expand(value, store)
	}
	return out
}

// Unresolved returns the placeholder names in s that have neither a value in store
// nor a default.
func Unresolved(s string, store Store) []string {
	var missing []string
	for _, m := range placeholderRegex.FindAllStringSubmatch(s, -1) {
		if _, ok := store.Get(m[1]); ok || hasDefault(m[0]) {
			continue
		}
		missing = append(missing, m[1])
	}
	return missing
}

type contextKey struct{}

var storeKey = contextKey{}

// FromContext retrieves the variable store from the context.
// Returns nil if not found.
func FromContext(ctx context.Context) Store {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(storeKey).(Store); ok {
		return s
	}
	return nil
}

// NewContext returns a new context with the variable store attached.
func NewContext(ctx context.Context, store Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, storeKey, store)
}
