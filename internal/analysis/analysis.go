// Package analysis runs a chart through the registry, detector, accumulator and strength
// engine in that order.
package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pbaille/bazi/internal/chart"
	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
	"github.com/pbaille/bazi/internal/interaction"
	"github.com/pbaille/bazi/internal/logger"
	"github.com/pbaille/bazi/internal/strength"
	"github.com/pbaille/bazi/internal/weights"
)

// Basis selects the vector the balance search runs on
type Basis string

const (
	BasisSeasonal Basis = "seasonal"
	BasisAdjusted Basis = "adjusted"
)

// Options control one analysis
type Options struct {
	// NatalOnly skips the interaction adjustment step.
	NatalOnly bool
	Basis     Basis
}

// Analyzer wires the pipeline stages together
type Analyzer struct {
	registry    *chart.Registry
	detector    *interaction.Detector
	accumulator *weights.Accumulator
	engine      *strength.Engine
	log         *logger.Logger
}

// New creates an Analyzer
func New(ref *ganzhi.Reference, wp weights.Params, sp strength.Params, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	return &Analyzer{
		registry:    chart.NewRegistry(ref),
		detector:    interaction.NewDetector(ref),
		accumulator: weights.New(ref, wp),
		engine:      strength.New(ref, sp),
		log:         log.With("component", "analysis"),
	}
}

// Registry exposes the chart registry for parsing
func (a *Analyzer) Registry() *chart.Registry {
	return a.registry
}

// Analyze runs every stage on c
func (a *Analyzer) Analyze(c chart.Chart, opts Options) (*domain.Analysis, error) {
	pillars, err := a.registry.Pillars(c)
	if err != nil {
		return nil, fmt.Errorf("register pillars: %w", err)
	}
	a.log.Debug("pillars registered", "count", len(pillars), "day_master", c.DayMaster())

	interactions := a.detector.Detect(pillars)
	a.log.Debug("interactions detected", "count", len(interactions))

	raw := a.accumulator.Raw(pillars)
	adjusted := raw
	if !opts.NatalOnly {
		adjusted = a.accumulator.Adjust(raw, pillars, interactions)
	}
	seasonal := a.accumulator.Seasonal(adjusted, c.Month.Branch)
	a.log.Debug("weights accumulated", "raw", raw.Map(), "adjusted", adjusted.Map(), "seasonal", seasonal.Map())

	basis := seasonal
	if opts.Basis == BasisAdjusted {
		basis = adjusted
	}
	assessment := a.engine.Assess(strength.Input{
		DayMaster: c.DayMaster(),
		Month:     c.Month.Branch,
		Pillars:   pillars,
		Raw:       raw,
		Seasonal:  seasonal,
		Basis:     basis,
	})
	a.log.Debug("strength assessed",
		"percent", assessment.Percent,
		"verdict", assessment.Verdict,
		"following", assessment.Following,
		"useful_god", assessment.UsefulGod)

	return &domain.Analysis{
		Pillars:      pillars,
		Interactions: interactions,
		Raw:          raw,
		Adjusted:     adjusted,
		Seasonal:     seasonal,
		Assessment:   assessment,
	}, nil
}

// AnalyzeSpec parses a textual chart and analyzes it
func (a *Analyzer) AnalyzeSpec(spec domain.ChartSpec, opts Options) (*domain.Analysis, error) {
	c, err := a.registry.Build(spec)
	if err != nil {
		return nil, fmt.Errorf("parse chart: %w", err)
	}
	return a.Analyze(c, opts)
}

// AnalyzeBatch analyzes specs concurrently, at most limit at a time. Results keep input
// order. The first failure cancels the remaining work.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, specs []domain.ChartSpec, opts Options, limit int) ([]*domain.Analysis, error) {
	results := make([]*domain.Analysis, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.AnalyzeSpec(spec, opts)
			if err != nil {
				return fmt.Errorf("chart %d %q: %w", i+1, spec.Label, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.log.Info("batch analyzed", "charts", len(specs))
	return results, nil
}
