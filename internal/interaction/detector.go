// Package interaction finds the structural relationships between the branches and stems
// of a chart.
package interaction

import (
	"fmt"
	"strings"

	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
)

// Detector scans pillars against the reference relation tables
type Detector struct {
	ref *ganzhi.Reference
	rel ganzhi.Relations
}

// NewDetector creates a Detector
func NewDetector(ref *ganzhi.Reference) *Detector {
	return &Detector{ref: ref, rel: ref.Relations()}
}

// Detect returns every interaction among the pillars. Types are independent: a branch pair
// that both clashes and destroys yields two records. The result is in scan order, which
// is stable for a given input but carries no priority.
func (d *Detector) Detect(pillars []domain.Pillar) []domain.Interaction {
	var out []domain.Interaction
	out = append(out, d.branchPairs(pillars)...)
	out = append(out, d.trios(pillars)...)
	out = append(out, d.selfPunishments(pillars)...)
	out = append(out, d.stemCombinations(pillars)...)
	return out
}

func (d *Detector) branchPairs(pillars []domain.Pillar) []domain.Interaction {
	var out []domain.Interaction
	for i := 0; i < len(pillars); i++ {
		for j := i + 1; j < len(pillars); j++ {
			a, b := pillars[i], pillars[j]
			pair := func(t domain.InteractionType, verb string) domain.Interaction {
				return domain.Interaction{
					Type:        t,
					Branches:    []domain.Branch{a.Branch, b.Branch},
					Positions:   []domain.Position{a.Position, b.Position},
					Description: fmt.Sprintf("%s (%s) %s %s (%s)", a.Branch, a.Position, verb, b.Branch, b.Position),
					Severity:    pairSeverity(t, a.Position, b.Position),
					Activated:   activated(a.Position, b.Position),
				}
			}

			if d.ref.Clashes(a.Branch, b.Branch) {
				out = append(out, pair(domain.Clash, "clashes with"))
			}
			if el, ok := d.ref.Harmony(a.Branch, b.Branch); ok {
				rec := pair(domain.Harmony, "combines with")
				rec.Element = el
				rec.Description += " into " + string(el)
				out = append(out, rec)
			}
			if matchesAny(d.rel.PunishmentPairs, a.Branch, b.Branch) {
				out = append(out, pair(domain.Punishment, "punishes"))
			}
			if matchesAny(d.rel.Harms, a.Branch, b.Branch) {
				out = append(out, pair(domain.Harm, "harms"))
			}
			if matchesAny(d.rel.Destructions, a.Branch, b.Branch) {
				out = append(out, pair(domain.Destruction, "destroys"))
			}
		}
	}
	return out
}

func matchesAny(pairs []ganzhi.Pair, a, b domain.Branch) bool {
	for _, p := range pairs {
		if p.Matches(a, b) {
			return true
		}
	}
	return false
}

// trios checks three-branch sets against the whole branch multiset, so a set split between
// natal and overlay pillars still counts. Frames and punishments report 2/3 as partial;
// directional sets only fire at 3/3.
func (d *Detector) trios(pillars []domain.Pillar) []domain.Interaction {
	present := make(map[domain.Branch]bool, len(pillars))
	natal := make(map[domain.Branch]bool, len(domain.NatalPositions))
	for _, p := range pillars {
		present[p.Branch] = true
		if p.Position.IsNatal() {
			natal[p.Branch] = true
		}
	}
	trioRecord := func(t domain.InteractionType, have []domain.Branch) domain.Interaction {
		return newTrioRecord(t, have, pillars, natal)
	}

	var out []domain.Interaction
	for _, t := range d.rel.Frames {
		switch have, missing := members(t, present); len(have) {
		case 3:
			rec := trioRecord(domain.ThreeHarmony, have)
			rec.Element = t.Element
			rec.Description = fmt.Sprintf("%s form a full %s frame", joinBranches(have), t.Element)
			out = append(out, rec)
		case 2:
			rec := trioRecord(domain.HalfThreeHarmony, have)
			rec.Element = t.Element
			rec.Missing = missing
			rec.Description = fmt.Sprintf("%s form half a %s frame, missing %s", joinBranches(have), t.Element, missing)
			out = append(out, rec)
		}
	}

	for _, t := range d.rel.Directions {
		if have, _ := members(t, present); len(have) == 3 {
			rec := trioRecord(domain.DirectionalCombo, have)
			rec.Element = t.Element
			rec.Description = fmt.Sprintf("%s gather the %s direction", joinBranches(have), t.Element)
			out = append(out, rec)
		}
	}

	for _, t := range d.rel.Punishments {
		switch have, missing := members(t, present); len(have) {
		case 3:
			rec := trioRecord(domain.Punishment, have)
			rec.Severity = domain.Severe
			rec.Description = fmt.Sprintf("%s complete a three-way punishment", joinBranches(have))
			out = append(out, rec)
		case 2:
			rec := trioRecord(domain.Punishment, have)
			rec.Severity = domain.Moderate
			rec.Missing = missing
			rec.Description = fmt.Sprintf("%s punish each other, missing %s", joinBranches(have), missing)
			out = append(out, rec)
		}
	}
	return out
}

// members splits a trio into the branches present (in trio order) and, when exactly one is
// absent, that branch.
func members(t ganzhi.Trio, present map[domain.Branch]bool) ([]domain.Branch, domain.Branch) {
	var have []domain.Branch
	var missing domain.Branch
	for _, b := range t.Branches {
		if present[b] {
			have = append(have, b)
		} else {
			missing = b
		}
	}
	if len(have) != 2 {
		missing = ""
	}
	return have, missing
}

// newTrioRecord lists every pillar holding a member branch. The record counts as overlay
// activated only when the natal branches alone hold fewer members than have.
func newTrioRecord(t domain.InteractionType, have []domain.Branch, pillars []domain.Pillar, natal map[domain.Branch]bool) domain.Interaction {
	in := make(map[domain.Branch]bool, len(have))
	natalMembers := 0
	for _, b := range have {
		in[b] = true
		if natal[b] {
			natalMembers++
		}
	}
	var positions []domain.Position
	for _, p := range pillars {
		if in[p.Branch] {
			positions = append(positions, p.Position)
		}
	}
	return domain.Interaction{
		Type:      t,
		Branches:  have,
		Positions: positions,
		Severity:  domain.Mild,
		Activated: natalMembers < len(have),
	}
}

func (d *Detector) selfPunishments(pillars []domain.Pillar) []domain.Interaction {
	var out []domain.Interaction
	for _, b := range d.rel.SelfPunishing {
		var positions []domain.Position
		for _, p := range pillars {
			if p.Branch == b {
				positions = append(positions, p.Position)
			}
		}
		if len(positions) < 2 {
			continue
		}
		sev := domain.Mild
		if len(positions) >= 3 {
			sev = domain.Moderate
		}
		branches := make([]domain.Branch, len(positions))
		for i := range branches {
			branches[i] = b
		}
		out = append(out, domain.Interaction{
			Type:        domain.SelfPunishment,
			Branches:    branches,
			Positions:   positions,
			Description: fmt.Sprintf("%s appears %d times and punishes itself", b, len(positions)),
			Severity:    sev,
			Activated:   activated(positions...),
		})
	}
	return out
}

func (d *Detector) stemCombinations(pillars []domain.Pillar) []domain.Interaction {
	var out []domain.Interaction
	for i := 0; i < len(pillars); i++ {
		for j := i + 1; j < len(pillars); j++ {
			a, b := pillars[i], pillars[j]
			el, ok := d.ref.Combination(a.Stem, b.Stem)
			if !ok {
				el, ok = d.ref.Combination(b.Stem, a.Stem)
			}
			if !ok {
				continue
			}
			adj := adjacent(a.Position, b.Position)
			where := "across the chart"
			if adj {
				where = "side by side"
			}
			out = append(out, domain.Interaction{
				Type:        domain.StemCombination,
				Stems:       []domain.Stem{a.Stem, b.Stem},
				Positions:   []domain.Position{a.Position, b.Position},
				Element:     el,
				Adjacent:    adj,
				Description: fmt.Sprintf("%s (%s) and %s (%s) combine %s into %s", a.Stem, a.Position, b.Stem, b.Position, where, el),
				Severity:    domain.Mild,
				Activated:   activated(a.Position, b.Position),
			})
		}
	}
	return out
}

func activated(positions ...domain.Position) bool {
	for _, p := range positions {
		if p.IsOverlay() {
			return true
		}
	}
	return false
}

// adjacent reports whether two natal pillars sit next to each other in year, month, day,
// hour order.
func adjacent(a, b domain.Position) bool {
	i, j := a.NatalIndex(), b.NatalIndex()
	if i < 0 || j < 0 {
		return false
	}
	return i-j == 1 || j-i == 1
}

// pairSeverity grades disruptive pairs by how close they strike to the day master.
// Combinations are always mild.
func pairSeverity(t domain.InteractionType, a, b domain.Position) domain.Severity {
	touches := func(p domain.Position) bool { return a == p || b == p }
	switch t {
	case domain.Clash:
		switch {
		case touches(domain.Day), touches(domain.Month):
			return domain.Severe
		case adjacent(a, b), activated(a, b):
			return domain.Moderate
		}
		return domain.Mild
	case domain.Punishment:
		if touches(domain.Day) {
			return domain.Severe
		}
		return domain.Moderate
	case domain.Harm, domain.Destruction:
		if touches(domain.Day) {
			return domain.Moderate
		}
		return domain.Mild
	}
	return domain.Mild
}

func joinBranches(bs []domain.Branch) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = string(b)
	}
	return strings.Join(parts, "-")
}
