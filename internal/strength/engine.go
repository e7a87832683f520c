// Package strength classifies the day master and searches for the element that best
// re-balances a chart.
package strength

import (
	"math"
	"slices"

	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
)

// Thresholds are the lower bounds of each verdict tier, inclusive
type Thresholds struct {
	ExtremelyStrong float64 `yaml:"extremely_strong" json:"extremely_strong"`
	Strong          float64 `yaml:"strong" json:"strong"`
	Neutral         float64 `yaml:"neutral" json:"neutral"`
	Weak            float64 `yaml:"weak" json:"weak"`
}

// Params are the tunable constants of the engine. The drain factor, following ratio and
// verdict thresholds are empirical.
type Params struct {
	MinPercent      float64    `yaml:"min_percent" json:"min_percent"`
	MaxPercent      float64    `yaml:"max_percent" json:"max_percent"`
	StrongRootScore float64    `yaml:"strong_root_score" json:"strong_root_score"`
	StrongRootBonus float64    `yaml:"strong_root_bonus" json:"strong_root_bonus"`
	NoRootPenalty   float64    `yaml:"no_root_penalty" json:"no_root_penalty"`
	DrainFactor     float64    `yaml:"drain_factor" json:"drain_factor"`
	Thresholds      Thresholds `yaml:"thresholds" json:"thresholds"`
	FollowingRatio  float64    `yaml:"following_ratio" json:"following_ratio"`
	MixedRatio      float64    `yaml:"mixed_ratio" json:"mixed_ratio"`
	Equilibrium     float64    `yaml:"equilibrium" json:"equilibrium"`
	Dose            float64    `yaml:"dose" json:"dose"`
	TopPairs        int        `yaml:"top_pairs" json:"top_pairs"`
}

// DefaultParams returns the standard constants
func DefaultParams() Params {
	return Params{
		MinPercent:      1.0,
		MaxPercent:      50.0,
		StrongRootScore: 50,
		StrongRootBonus: 1.0,
		NoRootPenalty:   1.5,
		DrainFactor:     0.4,
		Thresholds: Thresholds{
			ExtremelyStrong: 30,
			Strong:          24,
			Neutral:         16,
			Weak:            10,
		},
		FollowingRatio: 3,
		MixedRatio:     0.9,
		Equilibrium:    20,
		Dose:           1.0,
		TopPairs:       5,
	}
}

// Input is everything the engine reads
type Input struct {
	DayMaster domain.Stem
	Month     domain.Branch
	Pillars   []domain.Pillar
	Raw       domain.Weights
	Seasonal  domain.Weights
	// Basis is the vector the balance search runs on, seasonal or pre-seasonal.
	Basis domain.Weights
}

// Engine scores charts
type Engine struct {
	ref    *ganzhi.Reference
	params Params
}

// New creates an Engine
func New(ref *ganzhi.Reference, params Params) *Engine {
	return &Engine{ref: ref, params: params}
}

// Assess runs scoring, verdict, following detection and the useful god search
func (e *Engine) Assess(in Input) domain.Assessment {
	dm := e.ref.StemElement(in.DayMaster)
	pct := in.Seasonal.Percentages()
	score := e.Score(in.Seasonal, dm)
	drain := e.DrainPressure(pct, dm, score)
	hasRoot, strongRoot := e.Roots(in.Pillars, dm)

	effective := score - drain*e.params.DrainFactor
	switch {
	case strongRoot:
		effective += e.params.StrongRootBonus
	case !hasRoot:
		effective -= e.params.NoRootPenalty
	}
	effective = domain.Round1(effective)

	var breakdown domain.Weights
	for i, v := range pct {
		breakdown[i] = domain.Round1(v)
	}

	a := domain.Assessment{
		DayMaster:        in.DayMaster,
		DayMasterElement: dm,
		Percent:          score,
		Effective:        effective,
		DrainPressure:    domain.Round1(drain),
		HasRoot:          hasRoot,
		StrongRoot:       strongRoot,
		Verdict:          e.Verdict(effective),
		Breakdown:        breakdown,
	}

	if ft, leader, ok := e.Following(in, dm, strongRoot); ok {
		a.Following = true
		a.FollowingType = ft
		a.UsefulGod = leader
		a.Favorable, a.Unfavorable = followingSets(in.Raw, dm, leader)
		return a
	}

	b := e.Balance(in.Basis)
	a.UsefulGod = b.UsefulGod
	a.Favorable = b.Favorable
	a.Unfavorable = b.Unfavorable
	a.Ranking = b.Ranking
	a.BestPairs = b.Pairs
	return a
}

// Score is the day master element's share of the seasonal weights, clamped and rounded
func (e *Engine) Score(seasonal domain.Weights, dm domain.Element) float64 {
	p := seasonal.Percentages().Of(dm)
	p = math.Max(e.params.MinPercent, math.Min(e.params.MaxPercent, p))
	return domain.Round1(p)
}

// DrainPressure sums how far each draining element's share exceeds the day master's
func (e *Engine) DrainPressure(pct domain.Weights, dm domain.Element, score float64) float64 {
	if !dm.Valid() {
		return 0
	}
	var sum float64
	for _, d := range drains(dm) {
		sum += math.Max(0, pct.Of(d)-score)
	}
	return sum
}

// Roots reports whether any natal branch carries the day master element, and whether one
// of those qi entries is strong
func (e *Engine) Roots(pillars []domain.Pillar, dm domain.Element) (has, strong bool) {
	for _, p := range pillars {
		if !p.Position.IsNatal() {
			continue
		}
		for _, q := range p.Qi {
			if e.ref.StemElement(q.Stem) != dm || !dm.Valid() {
				continue
			}
			has = true
			if q.Score >= e.params.StrongRootScore {
				strong = true
			}
		}
	}
	return has, strong
}

// Verdict maps an effective percentage onto the five tiers
func (e *Engine) Verdict(effective float64) domain.Verdict {
	t := e.params.Thresholds
	switch {
	case effective >= t.ExtremelyStrong:
		return domain.ExtremelyStrong
	case effective >= t.Strong:
		return domain.Strong
	case effective >= t.Neutral:
		return domain.Neutral
	case effective >= t.Weak:
		return domain.Weak
	}
	return domain.ExtremelyWeak
}

// Following detects a chart whose day master gives up and follows the dominant force. It
// returns the category and the leading draining element.
func (e *Engine) Following(in Input, dm domain.Element, strongRoot bool) (domain.FollowingType, domain.Element, bool) {
	if !dm.Valid() || strongRoot {
		return "", "", false
	}
	resource := dm.GeneratedBy()
	for _, p := range in.Pillars {
		if !p.Position.IsNatal() || p.Position == domain.Day {
			continue
		}
		if el := e.ref.StemElement(p.Stem); el == dm || el == resource {
			return "", "", false
		}
	}

	if ph := e.ref.Phase(in.Month, dm); ph != domain.Imprisoned && ph != domain.Dead {
		return "", "", false
	}

	var drain float64
	for _, d := range drains(dm) {
		drain += in.Seasonal.Of(d)
	}
	support := in.Seasonal.Of(dm) + in.Seasonal.Of(resource)
	if drain <= support*e.params.FollowingRatio {
		return "", "", false
	}

	ranked := rankByRaw(in.Raw, drains(dm))
	leader, runnerUp := ranked[0], ranked[1]
	if lw := in.Raw.Of(leader); lw > 0 && in.Raw.Of(runnerUp) >= lw*e.params.MixedRatio {
		return domain.FollowMixed, leader, true
	}
	return category(dm, leader), leader, true
}

// drains returns the elements that weaken dm: its output, its wealth and its officer
func drains(dm domain.Element) []domain.Element {
	return []domain.Element{dm.Generates(), dm.Controls(), dm.ControlledBy()}
}

func category(dm, el domain.Element) domain.FollowingType {
	switch el {
	case dm.Generates():
		return domain.FollowOutput
	case dm.Controls():
		return domain.FollowWealth
	case dm.ControlledBy():
		return domain.FollowOfficer
	}
	return domain.FollowMixed
}

// rankByRaw orders elements by raw weight, heaviest first, ties in canonical order
func rankByRaw(raw domain.Weights, els []domain.Element) []domain.Element {
	out := append([]domain.Element(nil), els...)
	slices.SortStableFunc(out, func(a, b domain.Element) int {
		if c := compareDesc(raw.Of(a), raw.Of(b)); c != 0 {
			return c
		}
		return a.Index() - b.Index()
	})
	return out
}

func followingSets(raw domain.Weights, dm, leader domain.Element) (favorable, unfavorable []domain.Element) {
	favorable = append(favorable, leader)
	for _, el := range rankByRaw(raw, drains(dm)) {
		if el != leader {
			favorable = append(favorable, el)
		}
	}
	return favorable, []domain.Element{dm, dm.GeneratedBy()}
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
