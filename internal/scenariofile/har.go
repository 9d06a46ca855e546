package scenariofile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/torosent/granita/internal/har"
)

// LoadHAR turns a browser recording into a single scenario named after the file.
// Each kept entry becomes one HTTP step, in recording order.
func LoadHAR(path string, opts har.ConvertOptions) (*File, error) {
	archive, err := har.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromHAR(archive, name, opts)
}

// FromHAR builds a one-scenario File from archive.
func FromHAR(archive *har.HAR, name string, opts har.ConvertOptions) (*File, error) {
	recorded, err := har.Convert(archive, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(recorded) == 0 {
		return nil, fmt.Errorf("%w: scenario %s: no replayable requests in recording", ErrInvalidFile, name)
	}

	sc := Scenario{Name: name, Steps: make([]Step, 0, len(recorded))}
	for _, r := range recorded {
		sc.Steps = append(sc.Steps, Step{
			Name:     r.Name,
			Protocol: ProtocolHTTP,
			Method:   r.Method,
			URL:      r.URL,
		})
	}
	f := &File{Scenarios: []Scenario{sc}}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
