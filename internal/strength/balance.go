package strength

import (
	"math"
	"slices"

	"github.com/pbaille/bazi/internal/domain"
)

// Balance is the outcome of the dose simulation
type Balance struct {
	Imbalance   float64
	UsefulGod   domain.Element
	Favorable   []domain.Element
	Unfavorable []domain.Element
	Ranking     []domain.ElementDose
	Pairs       []domain.PairDose
}

// Imbalance is the squared distance of each element's share from equilibrium
func (e *Engine) Imbalance(w domain.Weights) float64 {
	var sum float64
	for _, p := range w.Percentages() {
		d := p - e.params.Equilibrium
		sum += d * d
	}
	return sum
}

// Balance doses each element, then each unordered pair, and ranks them by how much they
// reduce imbalance. An empty vector yields no useful god.
func (e *Engine) Balance(w domain.Weights) Balance {
	if w.Total() <= 0 {
		return Balance{}
	}
	current := e.Imbalance(w)
	b := Balance{Imbalance: roundImprovement(current)}

	for _, el := range domain.Elements {
		after := e.Imbalance(w.Plus(el, e.params.Dose))
		b.Ranking = append(b.Ranking, domain.ElementDose{
			Element:     el,
			Improvement: roundImprovement(current - after),
		})
	}
	slices.SortStableFunc(b.Ranking, func(x, y domain.ElementDose) int {
		return compareDesc(x.Improvement, y.Improvement)
	})

	b.UsefulGod = b.Ranking[0].Element
	for _, r := range b.Ranking {
		if r.Improvement > 0 {
			b.Favorable = append(b.Favorable, r.Element)
		} else {
			b.Unfavorable = append(b.Unfavorable, r.Element)
		}
	}

	for i, first := range domain.Elements {
		for _, second := range domain.Elements[i:] {
			dosed := w.Plus(first, e.params.Dose)
			if first != second {
				dosed = w.Plus(first, e.params.Dose/2).Plus(second, e.params.Dose/2)
			}
			b.Pairs = append(b.Pairs, domain.PairDose{
				First:       first,
				Second:      second,
				Improvement: roundImprovement(current - e.Imbalance(dosed)),
			})
		}
	}
	slices.SortStableFunc(b.Pairs, func(x, y domain.PairDose) int {
		return compareDesc(x.Improvement, y.Improvement)
	})
	if n := e.params.TopPairs; n >= 0 && len(b.Pairs) > n {
		b.Pairs = b.Pairs[:n]
	}
	return b
}

// roundImprovement trims float noise so symmetric doses tie exactly and sort in canonical
// element order.
func roundImprovement(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
