// Package weights converts pillars into a five-element weight vector.
//
// The three steps run in order and each returns a fresh vector:
//
//	Raw       natal stems and branch qi
//	Adjust    combination bonuses and clash penalties
//	Seasonal  month-branch phase multipliers, always last
package weights

import (
	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
)

// Bonus is what a combination adds to its resulting element
type Bonus struct {
	// Transformed applies when the resulting element already shows on a natal stem.
	Transformed float64 `yaml:"transformed" json:"transformed"`
	Combined    float64 `yaml:"combined" json:"combined"`
}

// Params are the tunable constants of the accumulator
type Params struct {
	Bonuses      map[domain.InteractionType]Bonus `yaml:"bonuses" json:"bonuses"`
	ClashPenalty float64                          `yaml:"clash_penalty" json:"clash_penalty"`
	Multipliers  map[domain.Phase]float64         `yaml:"multipliers" json:"multipliers"`
}

// DefaultParams returns the standard constants. Maps are freshly allocated.
func DefaultParams() Params {
	return Params{
		Bonuses: map[domain.InteractionType]Bonus{
			domain.Harmony:          {Transformed: 0.8, Combined: 0.4},
			domain.ThreeHarmony:     {Transformed: 1.5, Combined: 0.8},
			domain.HalfThreeHarmony: {Transformed: 0.6, Combined: 0.3},
			domain.DirectionalCombo: {Transformed: 1.5, Combined: 0.8},
			domain.StemCombination:  {Transformed: 0.8, Combined: 0.4},
		},
		ClashPenalty: 0.3,
		Multipliers: map[domain.Phase]float64{
			domain.Prosperous: 1.5,
			domain.Prime:      1.2,
			domain.Resting:    1.0,
			domain.Imprisoned: 0.8,
			domain.Dead:       0.6,
		},
	}
}

// Accumulator builds weight vectors
type Accumulator struct {
	ref    *ganzhi.Reference
	params Params
}

// New creates an Accumulator
func New(ref *ganzhi.Reference, params Params) *Accumulator {
	return &Accumulator{ref: ref, params: params}
}

// Raw adds 1.0 per natal stem and score/100 per natal branch qi entry. Overlay pillars and
// unknown stems contribute nothing.
func (a *Accumulator) Raw(pillars []domain.Pillar) domain.Weights {
	var w domain.Weights
	for _, p := range pillars {
		if !p.Position.IsNatal() {
			continue
		}
		w = w.Plus(a.ref.StemElement(p.Stem), 1.0)
		for _, q := range p.Qi {
			w = w.Plus(a.ref.StemElement(q.Stem), q.Score/100)
		}
	}
	return w
}

// Adjust applies combination bonuses and clash penalties to w
func (a *Accumulator) Adjust(w domain.Weights, pillars []domain.Pillar, interactions []domain.Interaction) domain.Weights {
	visible := make(map[domain.Element]bool, 4)
	for _, p := range pillars {
		if p.Position.IsNatal() {
			visible[a.ref.StemElement(p.Stem)] = true
		}
	}

	out := w
	for _, in := range interactions {
		switch {
		case in.Type.IsCombination():
			bonus, ok := a.params.Bonuses[in.Type]
			if !ok || !in.Element.Valid() {
				continue
			}
			if visible[in.Element] {
				out = out.Plus(in.Element, bonus.Transformed)
			} else {
				out = out.Plus(in.Element, bonus.Combined)
			}
		case in.Type == domain.Clash:
			for _, b := range in.Branches {
				out = out.Plus(a.ref.BranchElement(b), -a.params.ClashPenalty)
			}
		}
	}
	return out
}

// Seasonal scales each element by its phase multiplier for the month branch
func (a *Accumulator) Seasonal(w domain.Weights, month domain.Branch) domain.Weights {
	var out domain.Weights
	for i, e := range domain.Elements {
		out[i] = w[i] * a.Multiplier(a.ref.Phase(month, e))
	}
	return out
}

// Multiplier returns the factor for a phase, 1.0 when none is configured
func (a *Accumulator) Multiplier(ph domain.Phase) float64 {
	if m, ok := a.params.Multipliers[ph]; ok {
		return m
	}
	return 1.0
}
