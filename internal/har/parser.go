package har

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnsupportedVersion is returned for archives that are not HAR 1.x.
var ErrUnsupportedVersion = errors.New("unsupported HAR version")

// ParseFile reads the archive at path.
func ParseFile(path string) (*HAR, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open HAR file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes one archive from r. A missing version is read as 1.x.
func Parse(r io.Reader) (*HAR, error) {
	var archive HAR
	if err := json.NewDecoder(r).Decode(&archive); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode HAR: empty input")
		}
		return nil, fmt.Errorf("decode HAR: %w", err)
	}
	if archive.Log == nil {
		return nil, fmt.Errorf("invalid HAR: %w", ErrNoLog)
	}
	if v := strings.TrimSpace(archive.Log.Version); v != "" && !strings.HasPrefix(v, "1.") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}
	return &archive, nil
}
