package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/torosent/granita"
	"github.com/torosent/granita/internal/metrics"
)

func TestProgressReporterLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, 2)

	p.ReportScenario(granita.ScenarioReport{Name: "first", Duration: time.Millisecond})
	p.ReportScenario(granita.ScenarioReport{Name: "second", Duration: 2 * time.Millisecond, Err: errors.New("x")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "[1/2] ok") || !strings.Contains(lines[0], "first (1ms)") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[2/2] FAIL") || !strings.Contains(lines[1], "second") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestProgressReporterNilWriter(t *testing.T) {
	p := NewProgressReporter(nil, 1)
	p.ReportScenario(granita.ScenarioReport{Name: "quiet"})
}

func TestReportersFanOut(t *testing.T) {
	var seen []string
	rec := NewRecorder([]string{"a"})
	fan := Reporters{
		granita.ReporterFunc(func(r granita.ScenarioReport) { seen = append(seen, r.Name) }),
		nil,
		rec,
	}
	fan.ReportScenario(granita.ScenarioReport{Name: "a"})

	if len(seen) != 1 || seen[0] != "a" {
		t.Fatalf("expected first reporter to see the scenario, got %v", seen)
	}
	if rep := rec.Report(metrics.Stats{}, nil); rep.Executed != 1 {
		t.Fatalf("expected recorder to see the scenario, got %+v", rep)
	}
}
