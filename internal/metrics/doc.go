// Package metrics aggregates request latency and failures observed during a run.
//
// The [Collector] satisfies the executor's Recorder interface, so attaching it to a
// run is enough to collect numbers:
//
//	collector := metrics.NewCollector()
//	g := granita.New(granita.WithRecorder(collector))
//	err := g.Run(ctx)
//	stats := collector.Stats(elapsed)
//
// Latencies are kept in HDR histograms, overall and per protocol. Failures are
// counted by error type and by transport failure class ([StatusBucket]).
//
// The Collector is safe for concurrent use.
package metrics
