// Package granita runs named load-test scenarios one after another against a shared
// execution context.
//
// A scenario is a name and a body. Bodies issue requests through the Context they are
// given:
//
//	err := granita.New().
//		Scenario("health", func(ctx context.Context, c *granita.Context) error {
//			req, err := request.GET("http://localhost:8080/health").Build()
//			if err != nil {
//				return err
//			}
//			_, err = c.Send(ctx, req)
//			return err
//		}).
//		Run(ctx)
//
// Run executes scenarios in registration order, waits for each before starting the
// next and stops at the first error. Scenarios after a failure are not run.
package granita

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/granita/internal/tracing"
)

// Body is the work of one scenario.
type Body interface {
	Run(ctx context.Context, c *Context) error
}

// BodyFunc adapts a function to Body.
type BodyFunc func(ctx context.Context, c *Context) error

func (f BodyFunc) Run(ctx context.Context, c *Context) error {
	return f(ctx, c)
}

type scenario struct {
	name string
	body Body
}

// ScenarioReport describes one executed scenario.
type ScenarioReport struct {
	RunID    string
	Index    int
	Name     string
	Duration time.Duration
	Err      error
}

// Reporter observes scenarios as they finish. Skipped scenarios are never reported.
type Reporter interface {
	ReportScenario(r ScenarioReport)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(r ScenarioReport)

func (f ReporterFunc) ReportScenario(r ScenarioReport) { f(r) }

// Granita is the scenario registry. The zero value is not usable; call New.
type Granita struct {
	mu        sync.Mutex
	opts      options
	scenarios []scenario
	consumed  bool
}

// New returns an empty registry. Options apply to the Context created by Run.
func New(opts ...Option) *Granita {
	return &Granita{opts: buildOptions(opts)}
}

// Scenario registers fn under name. Names need not be unique.
func (g *Granita) Scenario(name string, fn func(ctx context.Context, c *Context) error) *Granita {
	if fn == nil {
		return g.Handle(name, nil)
	}
	return g.Handle(name, BodyFunc(fn))
}

// Handle registers body under name. After Run, registrations are ignored.
func (g *Granita) Handle(name string, body Body) *Granita {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.consumed {
		return g
	}
	g.scenarios = append(g.scenarios, scenario{name: name, body: body})
	return g
}

// Len reports how many scenarios are registered.
func (g *Granita) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.scenarios)
}

// Run executes every registered scenario in order against one new Context and returns
// the first error unchanged. Run consumes the builder: a second call returns
// ErrBuilderConsumed without running anything.
func (g *Granita) Run(ctx context.Context) error {
	g.mu.Lock()
	if g.consumed {
		g.mu.Unlock()
		return ErrBuilderConsumed
	}
	g.consumed = true
	scenarios := g.scenarios
	g.scenarios = nil
	g.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	runID := ulid.Make().String()
	execCtx := newContext(g.opts)

	for i, sc := range scenarios {
		if err := g.runScenario(ctx, execCtx, runID, i, sc); err != nil {
			return err
		}
	}
	return nil
}

func (g *Granita) runScenario(ctx context.Context, execCtx *Context, runID string, index int, sc scenario) error {
	var span trace.Span
	if g.opts.tracer != nil {
		ctx, span = tracing.StartScenarioSpan(ctx, g.opts.tracer, runID, index, sc.name)
	}

	start := time.Now()
	var err error
	if sc.body == nil {
		err = Configuration(fmt.Sprintf("scenario %q has no body", sc.name))
	} else {
		err = sc.body.Run(ctx, execCtx)
	}
	elapsed := time.Since(start)

	if span != nil {
		tracing.EndSpan(span, err)
	}
	if g.opts.reporter != nil {
		g.opts.reporter.ReportScenario(ScenarioReport{
			RunID:    runID,
			Index:    index,
			Name:     sc.name,
			Duration: elapsed,
			Err:      err,
		})
	}
	return err
}
