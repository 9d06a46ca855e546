// Package output renders run reports as text, JSON, YAML or HTML.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/torosent/granita"
	"github.com/torosent/granita/internal/metrics"
	"github.com/torosent/granita/internal/scenariofile"
	"github.com/torosent/granita/internal/threshold"
)

// Scenario states.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// ScenarioResult is one row of the report.
type ScenarioResult struct {
	Index      int           `json:"index" yaml:"index"`
	Name       string        `json:"name" yaml:"name"`
	Status     string        `json:"status" yaml:"status"`
	Duration   time.Duration `json:"-" yaml:"-"`
	DurationMs float64       `json:"duration_ms" yaml:"duration_ms"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType  string        `json:"error_type,omitempty" yaml:"error_type,omitempty"`
}

// Report summarizes a run.
type Report struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
	Passed      bool               `json:"passed" yaml:"passed"`
	Executed    int                `json:"executed" yaml:"executed"`
	Skipped     int                `json:"skipped" yaml:"skipped"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
	Scenarios   []ScenarioResult   `json:"scenarios" yaml:"scenarios"`
	Requests    metrics.Stats      `json:"requests" yaml:"requests"`
	Thresholds  []threshold.Result `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// ApplyThresholds attaches threshold results. Any failed threshold fails the run.
func (r *Report) ApplyThresholds(results []threshold.Result) {
	r.Thresholds = results
	if threshold.Failed(results) > 0 {
		r.Passed = false
	}
}

// Recorder collects scenario outcomes during a run. It implements granita.Reporter.
type Recorder struct {
	mu      sync.Mutex
	names   []string
	runID   string
	results []ScenarioResult
}

// NewRecorder expects the registered scenario names in order so that scenarios never
// reached can be reported as skipped.
func NewRecorder(names []string) *Recorder {
	return &Recorder{names: append([]string(nil), names...)}
}

func (r *Recorder) ReportScenario(sr granita.ScenarioReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runID = sr.RunID
	res := ScenarioResult{
		Index:      sr.Index,
		Name:       sr.Name,
		Status:     StatusPassed,
		Duration:   sr.Duration,
		DurationMs: float64(sr.Duration) / float64(time.Millisecond),
	}
	if sr.Err != nil {
		res.Status = StatusFailed
		res.Error = sr.Err.Error()
		res.ErrorType = errorType(sr.Err)
	}
	r.results = append(r.results, res)
}

// errorType classifies a scenario error. Step errors are wrapped with their step label,
// so the kinds are matched through the chain.
func errorType(err error) string {
	var expErr *scenariofile.ExpectationError
	var cfgErr *granita.ConfigurationError
	switch {
	case errors.Is(err, granita.ErrFailedRequestExecution):
		return "Request failed"
	case errors.As(err, &expErr):
		return "Expectation failed"
	case errors.As(err, &cfgErr):
		return "Configuration error"
	default:
		return metrics.ErrorName(err)
	}
}

// Report assembles the final report. runErr is the error returned by Run.
func (r *Recorder) Report(stats metrics.Stats, runErr error) Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := Report{
		RunID:       r.runID,
		GeneratedAt: time.Now().UTC(),
		Passed:      runErr == nil,
		Executed:    len(r.results),
		Requests:    stats,
	}
	if runErr != nil {
		rep.Error = runErr.Error()
	}
	rep.Scenarios = append(rep.Scenarios, r.results...)
	for i := len(r.results); i < len(r.names); i++ {
		rep.Scenarios = append(rep.Scenarios, ScenarioResult{Index: i, Name: r.names[i], Status: StatusSkipped})
		rep.Skipped++
	}
	return rep
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, rep Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(w, bold("\n--- Scenario Results ---"))
	if rep.RunID != "" {
		fmt.Fprintf(w, "Run:               %s\n", rep.RunID)
	}
	for _, sc := range rep.Scenarios {
		switch sc.Status {
		case StatusPassed:
			fmt.Fprintf(w, "  %s %s (%s)\n", green("✓"), sc.Name, sc.Duration.Round(time.Microsecond))
		case StatusFailed:
			fmt.Fprintf(w, "  %s %s (%s)\n", red("✗"), sc.Name, sc.Duration.Round(time.Microsecond))
			fmt.Fprintf(w, "      %s: %s\n", sc.ErrorType, sc.Error)
		default:
			fmt.Fprintf(w, "  %s %s %s\n", yellow("-"), sc.Name, yellow("(skipped)"))
		}
	}
	fmt.Fprintf(w, "Executed:          %d\n", rep.Executed)
	fmt.Fprintf(w, "Skipped:           %d\n", rep.Skipped)
	if len(rep.Thresholds) > 0 {
		fmt.Fprintf(w, "Thresholds:        %d/%d passed\n", len(rep.Thresholds)-threshold.Failed(rep.Thresholds), len(rep.Thresholds))
		for _, res := range rep.Thresholds {
			if res.Pass {
				fmt.Fprintf(w, "  %s\n", green(res.Message))
			} else {
				fmt.Fprintf(w, "  %s\n", red(res.Message))
			}
		}
	}
	if rep.Passed {
		fmt.Fprintf(w, "Result:            %s\n", green("PASS"))
	} else {
		fmt.Fprintf(w, "Result:            %s\n", red("FAIL"))
	}

	stats := rep.Requests
	fmt.Fprintln(w, bold("\n--- Request Results ---"))
	fmt.Fprintf(w, "Total Requests:    %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", stats.RequestsPerSec)
	if stats.Total == 0 {
		return
	}
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P95:             %s\n", stats.P95Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)

	if len(stats.Protocols) > 1 {
		fmt.Fprintln(w, "\nProtocol Breakdown:")
		for _, name := range stats.ProtocolNames() {
			p := stats.Protocols[name]
			fmt.Fprintf(w, "  - %s: total=%d, successes=%d, failures=%d, p99=%s\n",
				name, p.Total, p.Successes, p.Failures, p.P99Latency)
		}
	}

	if len(stats.FailureBuckets) > 0 {
		fmt.Fprintln(w, "\nFailure Buckets:")
		for _, row := range stats.FailureBuckets {
			fmt.Fprintf(w, "  %s %s: %d\n", strings.ToUpper(row.Protocol), row.Code, row.Count)
		}
	}
	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, label := range sortedKeys(stats.Errors) {
			fmt.Fprintf(w, "  %s: %d\n", label, stats.Errors[label])
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, rep Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return enc.Close()
}

// Write renders rep in the named format: text, json, yaml or html.
func Write(w io.Writer, format string, rep Report) error {
	switch strings.ToLower(format) {
	case "", "text":
		PrintReport(w, rep)
		return nil
	case "json":
		return PrintJSONReport(w, rep)
	case "yaml":
		return PrintYAMLReport(w, rep)
	case "html":
		return GenerateHTMLReport(w, rep)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
