// Package threshold evaluates pass/fail assertions against the request metrics of a run.
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/torosent/granita/internal/metrics"
	"github.com/torosent/granita/request"
)

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Protocol  string  // empty for all requests, else a request kind such as "grpc"
	Metric    string  // "req_duration", "req_failed" or "requests"
	Aggregate string  // e.g., "p95", "p99", "avg", "max", "rate"
	Operator  string  // e.g., "<", "<=", ">", ">=", "=="
	Value     float64 // The threshold value to compare against
	Raw       string  // Original threshold string for display
}

// Result represents the outcome of evaluating a threshold.
type Result struct {
	Threshold Threshold `json:"-" yaml:"-"`
	Raw       string    `json:"threshold" yaml:"threshold"`
	Actual    float64   `json:"actual" yaml:"actual"`
	Pass      bool      `json:"pass" yaml:"pass"`
	Message   string    `json:"message" yaml:"message"`
}

// Evaluator evaluates thresholds against collected metrics.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks all thresholds against the provided stats.
func (e *Evaluator) Evaluate(stats metrics.Stats) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, e.evaluateOne(t, stats))
	}
	return results
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Pass {
			n++
		}
	}
	return n
}

func (e *Evaluator) evaluateOne(t Threshold, stats metrics.Stats) Result {
	actual, err := extractMetricValue(t, stats)
	if err != nil {
		return Result{
			Threshold: t,
			Raw:       t.Raw,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	return Result{
		Threshold: t,
		Raw:       t.Raw,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s: %.2f %s %.2f", status, t.Raw, actual, t.Operator, t.Value),
	}
}

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
// - "req_duration:p95 < 500"        (latency percentile in ms, all requests)
// - "grpc_req_duration:p99 < 200"   (same, gRPC requests only)
// - "req_failed:rate < 0.01"        (failure rate as decimal)
// - "http_req_failed:count < 10"    (failure count)
// - "requests:rate > 100"           (requests per second)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: metric:aggregate operator value, e.g., 'req_duration:p95 < 500')", s)
	}

	protocol, metric := splitMetric(matches[1])
	aggregate := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if !isValidMetric(metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: req_duration, req_failed, requests, optionally prefixed by a protocol)", matches[1])
	}
	if !isValidAggregate(aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate: %q (supported: p50, p90, p95, p99, avg, min, max, rate, count)", aggregate)
	}
	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Protocol:  protocol,
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// splitMetric separates a protocol prefix such as "grpc_" from the metric name.
func splitMetric(name string) (protocol, metric string) {
	for _, kind := range request.Kinds() {
		prefix := string(kind) + "_"
		if strings.HasPrefix(name, prefix) {
			return string(kind), strings.TrimPrefix(name, prefix)
		}
	}
	return "", name
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

func isValidMetric(metric string) bool {
	return slices.Contains([]string{"req_duration", "req_failed", "requests"}, metric)
}

func isValidAggregate(aggregate string) bool {
	return slices.Contains([]string{"p50", "p90", "p95", "p99", "avg", "min", "max", "rate", "count"}, aggregate)
}

func isValidOperator(operator string) bool {
	return slices.Contains([]string{"<", "<=", ">", ">=", "=="}, operator)
}

func extractMetricValue(t Threshold, stats metrics.Stats) (float64, error) {
	series := stats.LatencyStats
	if t.Protocol != "" {
		// A protocol with no recorded requests has a zero series.
		series = stats.Protocols[t.Protocol]
	}

	switch t.Metric {
	case "req_duration":
		return extractLatencyMetric(t.Aggregate, series)
	case "req_failed":
		return extractFailureMetric(t.Aggregate, series)
	case "requests":
		return extractRequestMetric(t.Aggregate, series, stats)
	default:
		return 0, fmt.Errorf("unknown metric: %s", t.Metric)
	}
}

func extractLatencyMetric(aggregate string, s metrics.LatencyStats) (float64, error) {
	switch aggregate {
	case "p50":
		return s.P50LatencyMs, nil
	case "p90":
		return s.P90LatencyMs, nil
	case "p95":
		return s.P95LatencyMs, nil
	case "p99":
		return s.P99LatencyMs, nil
	case "avg":
		return s.MeanLatencyMs, nil
	case "min":
		return s.MinLatencyMs, nil
	case "max":
		return s.MaxLatencyMs, nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for req_duration", aggregate)
	}
}

func extractFailureMetric(aggregate string, s metrics.LatencyStats) (float64, error) {
	switch aggregate {
	case "count":
		return float64(s.Failures), nil
	case "rate":
		if s.Total == 0 {
			return 0, nil
		}
		return float64(s.Failures) / float64(s.Total), nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for req_failed (use 'count' or 'rate')", aggregate)
	}
}

func extractRequestMetric(aggregate string, s metrics.LatencyStats, stats metrics.Stats) (float64, error) {
	switch aggregate {
	case "count":
		return float64(s.Total), nil
	case "rate":
		if stats.Duration <= 0 {
			return 0, nil
		}
		return float64(s.Total) / stats.Duration.Seconds(), nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for requests (use 'count' or 'rate')", aggregate)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
