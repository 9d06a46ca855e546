package granita

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/granita/internal/executor"
	"github.com/torosent/granita/transport"
)

// FailureLogger receives the detailed cause of every failed request.
type FailureLogger = executor.FailureLogger

// Recorder observes the latency and outcome of every request.
type Recorder = executor.Recorder

type options struct {
	transports    *transport.Set
	failureLogger FailureLogger
	recorder      Recorder
	tracer        trace.Tracer
	reporter      Reporter
}

// Option configures a Granita builder or a Context.
type Option func(*options)

// WithTransports replaces the default production transports.
func WithTransports(set transport.Set) Option {
	return func(o *options) {
		o.transports = &set
	}
}

// WithFailureLogger hands the cause of each failed request to logger before Send
// collapses it to ErrFailedRequestExecution.
func WithFailureLogger(logger FailureLogger) Option {
	return func(o *options) {
		o.failureLogger = logger
	}
}

// WithRecorder records the latency and outcome of every request.
func WithRecorder(rec Recorder) Option {
	return func(o *options) {
		o.recorder = rec
	}
}

// WithTracer wraps every scenario and request in a span.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithReporter receives a ScenarioReport after each executed scenario. It has no effect
// on NewContext.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
