package output

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gofrs/flock"
)

// WriteFile renders rep to path. The file is written under an exclusive lock on
// path+".lock" so concurrent runs sharing a report path do not interleave.
func WriteFile(path, format string, rep Report) error {
	// Terminal escapes never go to files.
	prev := color.NoColor
	color.NoColor = true
	var buf bytes.Buffer
	err := Write(&buf, format, rep)
	color.NoColor = prev
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock report file: %w", err)
	}
	defer lock.Unlock()

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
