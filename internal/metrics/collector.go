package metrics

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/torosent/granita/internal/executor"
	"github.com/torosent/granita/request"
	"github.com/torosent/granita/transport"
)

// Collector records per-request metrics in a thread-safe manner.
type Collector struct {
	mu           sync.Mutex
	overall      *series
	byKind       map[request.Kind]*series
	errorsByType map[string]int64
	// failures per protocol, keyed by transport failure class
	failureBuckets map[string]map[string]int
}

// series accumulates latencies for one slice of the traffic.
type series struct {
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
}

func newSeries() *series {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &series{hist: hdrhistogram.New(1, 60_000_000, 3)}
}

func (s *series) record(latency time.Duration, failed bool) {
	if latency > 0 {
		us := latency.Microseconds()
		if us < s.hist.LowestTrackableValue() {
			us = s.hist.LowestTrackableValue()
		}
		if us > s.hist.HighestTrackableValue() {
			us = s.hist.HighestTrackableValue()
		}
		_ = s.hist.RecordValue(us)
	}
	s.sumLatency += latency

	if s.minLatency == 0 || latency < s.minLatency {
		s.minLatency = latency
	}
	if latency > s.maxLatency {
		s.maxLatency = latency
	}

	if failed {
		s.failures++
	} else {
		s.successes++
	}
}

// LatencyStats summarizes one series.
type LatencyStats struct {
	Total       int64         `json:"total" yaml:"total"`
	Successes   int64         `json:"successes" yaml:"successes"`
	Failures    int64         `json:"failures" yaml:"failures"`
	MinLatency  time.Duration `json:"-" yaml:"-"`
	MaxLatency  time.Duration `json:"-" yaml:"-"`
	MeanLatency time.Duration `json:"-" yaml:"-"`
	P50Latency  time.Duration `json:"-" yaml:"-"`
	P90Latency  time.Duration `json:"-" yaml:"-"`
	P95Latency  time.Duration `json:"-" yaml:"-"`
	P99Latency  time.Duration `json:"-" yaml:"-"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms" yaml:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms" yaml:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms" yaml:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms" yaml:"p90_latency_ms"`
	P95LatencyMs  float64 `json:"p95_latency_ms" yaml:"p95_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms" yaml:"p99_latency_ms"`
}

func (s *series) stats() LatencyStats {
	total := s.successes + s.failures
	stats := LatencyStats{
		Total:      total,
		Successes:  s.successes,
		Failures:   s.failures,
		MinLatency: s.minLatency,
		MaxLatency: s.maxLatency,
	}
	if total > 0 {
		stats.MeanLatency = time.Duration(int64(s.sumLatency) / total)
	}
	if s.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(s.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Latency = time.Duration(s.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P95Latency = time.Duration(s.hist.ValueAtQuantile(95)) * time.Microsecond
		stats.P99Latency = time.Duration(s.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.MinLatencyMs = toMs(stats.MinLatency)
	stats.MaxLatencyMs = toMs(stats.MaxLatency)
	stats.MeanLatencyMs = toMs(stats.MeanLatency)
	stats.P50LatencyMs = toMs(stats.P50Latency)
	stats.P90LatencyMs = toMs(stats.P90Latency)
	stats.P95LatencyMs = toMs(stats.P95Latency)
	stats.P99LatencyMs = toMs(stats.P99Latency)
	return stats
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Stats represents aggregated metrics.
type Stats struct {
	LatencyStats   `yaml:",inline"`
	Duration       time.Duration           `json:"-" yaml:"-"`
	DurationMs     float64                 `json:"duration_ms" yaml:"duration_ms"`
	RequestsPerSec float64                 `json:"requests_per_sec" yaml:"requests_per_sec"`
	Protocols      map[string]LatencyStats `json:"protocols,omitempty" yaml:"protocols,omitempty"`
	Errors         map[string]int          `json:"errors,omitempty" yaml:"errors,omitempty"`
	FailureBuckets []StatusBucket          `json:"failure_buckets,omitempty" yaml:"failure_buckets,omitempty"`
}

func NewCollector() *Collector {
	return &Collector{
		overall:        newSeries(),
		byKind:         make(map[request.Kind]*series),
		errorsByType:   make(map[string]int64),
		failureBuckets: make(map[string]map[string]int),
	}
}

// RecordRequest records a single request's latency and error state.
func (c *Collector) RecordRequest(kind request.Kind, latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.overall.record(latency, err != nil)
	s, ok := c.byKind[kind]
	if !ok {
		s = newSeries()
		c.byKind[kind] = s
	}
	s.record(latency, err != nil)

	if err == nil {
		return
	}
	c.errorsByType[errorLabel(err)]++

	protocol := string(kind)
	if c.failureBuckets[protocol] == nil {
		c.failureBuckets[protocol] = make(map[string]int)
	}
	c.failureBuckets[protocol][failureClass(err)]++
}

func errorLabel(err error) string {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return fmt.Sprintf("Transport %s error", terr.Kind)
	}
	var eerr *executor.Error
	if errors.As(err, &eerr) {
		return capitalize(eerr.Kind.String())
	}
	return ErrorName(err)
}

func failureClass(err error) string {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr.Kind.String()
	}
	return "request"
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		LatencyStats: c.overall.stats(),
		Duration:     elapsed,
		DurationMs:   toMs(elapsed),
	}
	if elapsed > 0 && stats.Total > 0 {
		stats.RequestsPerSec = float64(stats.Total) / elapsed.Seconds()
	}

	if len(c.byKind) > 0 {
		stats.Protocols = make(map[string]LatencyStats, len(c.byKind))
		for kind, s := range c.byKind {
			stats.Protocols[string(kind)] = s.stats()
		}
	}

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}
	stats.FailureBuckets = FlattenStatusBuckets(c.failureBuckets)

	return stats
}

// ProtocolNames returns the recorded protocols in sorted order.
func (s Stats) ProtocolNames() []string {
	names := make([]string, 0, len(s.Protocols))
	for name := range s.Protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
