// Package feeder supplies per-scenario data records from CSV or JSON files.
package feeder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Record is a single row of data with named fields.
type Record map[string]string

// Feeder hands out records in file order, starting over after the last one.
// Implementations must be safe for concurrent use.
type Feeder interface {
	Next(ctx context.Context) (Record, error)
	Close() error
	Len() int
}

// ErrEmpty is returned when a data file holds no records.
var ErrEmpty = errors.New("feeder: no records")

// Open picks a feeder from the file extension: .csv or .json.
func Open(path string) (Feeder, error) {
	var (
		f   Feeder
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err = NewCSVFeeder(path)
	case ".json":
		f, err = NewJSONFeeder(path)
	default:
		return nil, fmt.Errorf("feeder: unsupported data file %q (want .csv or .json)", path)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// records is the round-robin cursor shared by the file feeders.
type records struct {
	mu    sync.Mutex
	rows  []Record
	index int
}

func (r *records) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.rows) == 0 {
		return nil, ErrEmpty
	}
	rec := r.rows[r.index]
	r.index = (r.index + 1) % len(r.rows)

	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, nil
}

func (r *records) Close() error { return nil }

func (r *records) Len() int { return len(r.rows) }
