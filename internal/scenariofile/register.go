package scenariofile

import (
	"context"
	"fmt"

	"github.com/torosent/granita"
	"github.com/torosent/granita/internal/extractor"
	"github.com/torosent/granita/internal/feeder"
	"github.com/torosent/granita/internal/variables"
)

// Option configures Register.
type Option func(*scenarioBody)

// WithData gives each scenario run the next record from data. Record fields override
// variables seeded through the context.
func WithData(data feeder.Feeder) Option {
	return func(b *scenarioBody) {
		b.data = data
	}
}

// Register adds every scenario in f to g in file order.
func Register(g *granita.Granita, f *File, opts ...Option) *granita.Granita {
	for _, sc := range f.Scenarios {
		body := &scenarioBody{scenario: sc}
		for _, opt := range opts {
			opt(body)
		}
		g.Handle(sc.Name, body)
	}
	return g
}

type scenarioBody struct {
	scenario Scenario
	data     feeder.Feeder
}

// Run executes the steps in order against a fresh variable store seeded from the store
// in ctx, if any, and then from the next data record. The first failing step ends the
// scenario.
func (b *scenarioBody) Run(ctx context.Context, c *granita.Context) error {
	store := variables.NewStore()
	if seed := variables.FromContext(ctx); seed != nil {
		for k, v := range seed.GetAll() {
			store.Set(k, v)
		}
	}
	if b.data != nil {
		rec, err := b.data.Next(ctx)
		if err != nil {
			return fmt.Errorf("scenario data: %w", err)
		}
		for k, v := range rec {
			store.Set(k, v)
		}
	}
	ctx = variables.NewContext(ctx, store)

	for i, step := range b.scenario.Steps {
		label := step.label(i)

		if missing := variables.Unresolved(step.URL, store); len(missing) > 0 {
			return fmt.Errorf("step %s: unresolved variables %v in url", label, missing)
		}
		req, err := step.buildRequest(store)
		if err != nil {
			return fmt.Errorf("step %s: %w", label, err)
		}

		resp, err := c.Send(ctx, req)
		if err != nil {
			return fmt.Errorf("step %s: %w", label, err)
		}

		text := responseText(resp)
		if reason := step.Expect.check(resp, text, store); reason != "" {
			return &ExpectationError{Scenario: b.scenario.Name, Step: label, Reason: reason}
		}

		if len(step.Extract) == 0 {
			continue
		}
		rules := make([]extractor.Extractor, 0, len(step.Extract))
		for _, r := range step.Extract {
			rules = append(rules, r.extractor())
		}
		values, err := extractor.ExtractAll(text, rules)
		for k, v := range values {
			store.Set(k, v)
		}
		if err != nil {
			return fmt.Errorf("step %s: %w", label, err)
		}
	}
	return nil
}
