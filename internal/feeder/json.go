package feeder

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// JSONFeeder reads records from a JSON array of flat objects. Values keep their
// literal text, so 1000000 stays "1000000" and nested values stay raw JSON.
type JSONFeeder struct {
	records
}

func NewJSONFeeder(path string) (*JSONFeeder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open JSON file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode JSON: invalid document in %s", path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("decode JSON: %s must hold an array of objects", path)
	}

	f := &JSONFeeder{}
	for idx, value := range root.Array() {
		if !value.IsObject() {
			return nil, fmt.Errorf("record %d is not an object", idx)
		}
		rec := make(Record)
		value.ForEach(func(key, field gjson.Result) bool {
			rec[key.String()] = field.String()
			return true
		})
		if len(rec) == 0 {
			return nil, fmt.Errorf("record %d is empty", idx)
		}
		f.rows = append(f.rows, rec)
	}
	if len(f.rows) == 0 {
		return nil, fmt.Errorf("%w: JSON file contains empty array", ErrEmpty)
	}
	return f, nil
}
