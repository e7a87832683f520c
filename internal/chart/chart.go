// Package chart turns caller-supplied pillars into the ordered list the rest of the
// pipeline scans.
package chart

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
)

var (
	ErrMissingPillar = errors.New("missing natal pillar")
	ErrUnknownStem   = errors.New("unknown stem")
	ErrUnknownBranch = errors.New("unknown branch")
)

// Chart holds the four natal pillars and any overlays
type Chart struct {
	Year  domain.Pillar
	Month domain.Pillar
	Day   domain.Pillar
	Hour  domain.Pillar
	Luck  *domain.Pillar
	// Periods is keyed by annual, monthly, daily or hourly.
	Periods map[domain.Position]domain.Pillar
}

// DayMaster returns the stem of the day pillar
func (c Chart) DayMaster() domain.Stem {
	return c.Day.Stem
}

// Registry normalizes charts against a reference
type Registry struct {
	ref *ganzhi.Reference
}

// NewRegistry creates a Registry
func NewRegistry(ref *ganzhi.Reference) *Registry {
	return &Registry{ref: ref}
}

// Pillars returns the chart's pillars in canonical order: the four natal pillars, then the
// luck pillar, then period pillars in label order. Absent overlays are omitted. Pillars
// without qi get the reference qi for their branch.
func (r *Registry) Pillars(c Chart) ([]domain.Pillar, error) {
	natal := [4]domain.Pillar{c.Year, c.Month, c.Day, c.Hour}
	out := make([]domain.Pillar, 0, 9)

	for i, p := range natal {
		if p.Stem == "" || p.Branch == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingPillar, domain.NatalPositions[i])
		}
		if _, ok := r.ref.Stem(p.Stem); !ok {
			return nil, fmt.Errorf("%w: %s at %s", ErrUnknownStem, p.Stem, domain.NatalPositions[i])
		}
		if _, ok := r.ref.Branch(p.Branch); !ok {
			return nil, fmt.Errorf("%w: %s at %s", ErrUnknownBranch, p.Branch, domain.NatalPositions[i])
		}
		out = append(out, r.normalize(domain.NatalPositions[i], p))
	}

	if c.Luck != nil {
		out = append(out, r.normalize(domain.Luck, *c.Luck))
	}
	for _, pos := range domain.PeriodPositions {
		if p, ok := c.Periods[pos]; ok {
			out = append(out, r.normalize(pos, p))
		}
	}
	return out, nil
}

func (r *Registry) normalize(pos domain.Position, p domain.Pillar) domain.Pillar {
	qi := append([]domain.QiEntry(nil), p.Qi...)
	if len(qi) == 0 {
		if info, ok := r.ref.Branch(p.Branch); ok {
			qi = info.Qi
		}
	}
	return domain.Pillar{Position: pos, Stem: p.Stem, Branch: p.Branch, Qi: qi}
}

// Build parses a textual chart
func (r *Registry) Build(spec domain.ChartSpec) (Chart, error) {
	var c Chart
	natal := []struct {
		pos  domain.Position
		text string
		dst  *domain.Pillar
	}{
		{domain.Year, spec.Year, &c.Year},
		{domain.Month, spec.Month, &c.Month},
		{domain.Day, spec.Day, &c.Day},
		{domain.Hour, spec.Hour, &c.Hour},
	}
	for _, n := range natal {
		if strings.TrimSpace(n.text) == "" {
			return Chart{}, fmt.Errorf("%w: %s", ErrMissingPillar, n.pos)
		}
		p, err := r.ParsePillar(n.pos, n.text)
		if err != nil {
			return Chart{}, err
		}
		*n.dst = p
	}

	if strings.TrimSpace(spec.Luck) != "" {
		p, err := r.ParsePillar(domain.Luck, spec.Luck)
		if err != nil {
			return Chart{}, err
		}
		c.Luck = &p
	}

	periods := map[domain.Position]string{
		domain.Annual:  spec.Annual,
		domain.Monthly: spec.Monthly,
		domain.Daily:   spec.Daily,
		domain.Hourly:  spec.Hourly,
	}
	for _, pos := range domain.PeriodPositions {
		text := periods[pos]
		if strings.TrimSpace(text) == "" {
			continue
		}
		p, err := r.ParsePillar(pos, text)
		if err != nil {
			return Chart{}, err
		}
		if c.Periods == nil {
			c.Periods = make(map[domain.Position]domain.Pillar)
		}
		c.Periods[pos] = p
	}
	return c, nil
}

// ParsePillar reads a stem-branch pair such as "Jia-Zi", "JiaZi", "jia zi" or "甲子"
func (r *Registry) ParsePillar(pos domain.Position, text string) (domain.Pillar, error) {
	s := strings.TrimSpace(text)
	if utf8.RuneCountInString(s) == 2 {
		runes := []rune(s)
		stem, okS := r.ref.StemGlyph(string(runes[0]))
		branch, okB := r.ref.BranchGlyph(string(runes[1]))
		switch {
		case okS && okB:
			return domain.Pillar{Position: pos, Stem: stem, Branch: branch}, nil
		case okS:
			return domain.Pillar{}, fmt.Errorf("%w: %q at %s", ErrUnknownBranch, text, pos)
		}
	}

	s = strings.NewReplacer("-", "", " ", "", "_", "", "/", "").Replace(s)
	var err error = fmt.Errorf("%w: cannot read %q at %s", ErrUnknownStem, text, pos)
	for _, stem := range r.ref.Stems() {
		if len(s) > len(stem) && strings.EqualFold(s[:len(stem)], string(stem)) {
			p, perr := r.pillar(pos, string(stem), s[len(stem):], text)
			if perr == nil {
				return p, nil
			}
			err = perr
		}
	}
	return domain.Pillar{}, err
}

func (r *Registry) pillar(pos domain.Position, stem, branch, text string) (domain.Pillar, error) {
	st, ok := r.lookupStem(stem)
	if !ok {
		return domain.Pillar{}, fmt.Errorf("%w: %q at %s", ErrUnknownStem, text, pos)
	}
	br, ok := r.lookupBranch(branch)
	if !ok {
		return domain.Pillar{}, fmt.Errorf("%w: %q at %s", ErrUnknownBranch, text, pos)
	}
	return domain.Pillar{Position: pos, Stem: st, Branch: br}, nil
}

func (r *Registry) lookupStem(name string) (domain.Stem, bool) {
	for _, s := range r.ref.Stems() {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

func (r *Registry) lookupBranch(name string) (domain.Branch, bool) {
	for _, b := range r.ref.Branches() {
		if strings.EqualFold(string(b), name) {
			return b, true
		}
	}
	return "", false
}
