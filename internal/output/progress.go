package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/torosent/granita"
)

// ProgressReporter prints one line per finished scenario as the run progresses.
type ProgressReporter struct {
	mu     sync.Mutex
	writer io.Writer
	total  int
	done   int
	green  *color.Color
	red    *color.Color
	dim    *color.Color
}

// NewProgressReporter writes to writer; total is the number of registered scenarios.
func NewProgressReporter(writer io.Writer, total int) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		writer: writer,
		total:  total,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		dim:    color.New(color.Faint),
	}
}

func (p *ProgressReporter) ReportScenario(r granita.ScenarioReport) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.dim.Fprintf(p.writer, "[%d/%d] ", p.done, p.total)
	if r.Err != nil {
		p.red.Fprint(p.writer, "FAIL ")
	} else {
		p.green.Fprint(p.writer, "ok   ")
	}
	fmt.Fprintf(p.writer, "%s (%s)\n", r.Name, r.Duration.Round(time.Microsecond))
}

// Reporters fans a scenario report out to each non-nil reporter in order.
type Reporters []granita.Reporter

func (rs Reporters) ReportScenario(r granita.ScenarioReport) {
	for _, rep := range rs {
		if rep != nil {
			rep.ReportScenario(r)
		}
	}
}
