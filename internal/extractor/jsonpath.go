package extractor

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// normalizePath accepts both "$.field" and "field"; a bare "$" selects the document.
func normalizePath(path string) string {
	if len(path) > 0 && path[0] == '$' {
		if len(path) > 1 && path[1] == '.' {
			return path[2:]
		} else if len(path) == 1 {
			return "@this"
		}
	}
	return path
}

func findJSONPath(body, path string) (string, error) {
	result, ok := Lookup(body, path)
	if !ok {
		return "", fmt.Errorf("%w: json path %s", ErrNotFound, path)
	}
	return result, nil
}

// Lookup returns the value at path in a JSON body. Objects and arrays are returned as
// raw JSON, scalars as their string form.
func Lookup(body, path string) (string, bool) {
	if !gjson.Valid(body) {
		return "", false
	}
	result := gjson.Get(body, normalizePath(path))
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}
