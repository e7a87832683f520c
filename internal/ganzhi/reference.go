// Package ganzhi holds the fixed stem and branch tables every analysis reads from.
//
// A Reference is built once and never modified afterwards, so a single value can be
// shared by any number of concurrent analyses. Standard returns the traditional tables;
// New accepts synthetic ones for tests.
package ganzhi

import (
	"sync"

	"github.com/pbaille/bazi/internal/domain"
)

// StemInfo describes one heavenly stem
type StemInfo struct {
	Name     domain.Stem
	Glyph    string
	Element  domain.Element
	Polarity domain.Polarity
	// Partner is the stem this one combines with, producing Combines.
	Partner  domain.Stem
	Combines domain.Element
}

// BranchInfo describes one earthly branch
type BranchInfo struct {
	Name     domain.Branch
	Glyph    string
	Element  domain.Element
	Polarity domain.Polarity
	// Qi is ordered: index 0 is the primary qi, the rest are hidden.
	Qi             []domain.QiEntry
	Clash          domain.Branch
	Harmony        domain.Branch
	HarmonyElement domain.Element
	// Season is the element in power when this branch rules the month.
	Season domain.Element
}

// Trio is a three-branch set, with the element it forms when complete
type Trio struct {
	Branches [3]domain.Branch
	Element  domain.Element
}

// Pair is an unordered two-branch relation
type Pair [2]domain.Branch

// Relations are the branch relation tables not carried on BranchInfo
type Relations struct {
	Frames          []Trio
	Directions      []Trio
	Punishments     []Trio
	PunishmentPairs []Pair
	SelfPunishing   []domain.Branch
	Harms           []Pair
	Destructions    []Pair
}

// Reference is an immutable set of stem, branch and relation tables
type Reference struct {
	stemOrder    []domain.Stem
	branchOrder  []domain.Branch
	stems        map[domain.Stem]StemInfo
	branches     map[domain.Branch]BranchInfo
	stemGlyphs   map[string]domain.Stem
	branchGlyphs map[string]domain.Branch
	rel          Relations
}

// New builds a Reference from the given tables. The slices are copied.
func New(stems []StemInfo, branches []BranchInfo, rel Relations) *Reference {
	r := &Reference{
		stems:        make(map[domain.Stem]StemInfo, len(stems)),
		branches:     make(map[domain.Branch]BranchInfo, len(branches)),
		stemGlyphs:   make(map[string]domain.Stem, len(stems)),
		branchGlyphs: make(map[string]domain.Branch, len(branches)),
		rel: Relations{
			Frames:          append([]Trio(nil), rel.Frames...),
			Directions:      append([]Trio(nil), rel.Directions...),
			Punishments:     append([]Trio(nil), rel.Punishments...),
			PunishmentPairs: append([]Pair(nil), rel.PunishmentPairs...),
			SelfPunishing:   append([]domain.Branch(nil), rel.SelfPunishing...),
			Harms:           append([]Pair(nil), rel.Harms...),
			Destructions:    append([]Pair(nil), rel.Destructions...),
		},
	}
	for _, s := range stems {
		r.stemOrder = append(r.stemOrder, s.Name)
		r.stems[s.Name] = s
		if s.Glyph != "" {
			r.stemGlyphs[s.Glyph] = s.Name
		}
	}
	for _, b := range branches {
		b.Qi = append([]domain.QiEntry(nil), b.Qi...)
		r.branchOrder = append(r.branchOrder, b.Name)
		r.branches[b.Name] = b
		if b.Glyph != "" {
			r.branchGlyphs[b.Glyph] = b.Name
		}
	}
	return r
}

var (
	standardOnce sync.Once
	standard     *Reference
)

// Standard returns the traditional tables, built on first use
func Standard() *Reference {
	standardOnce.Do(func() {
		standard = New(standardStems, standardBranches, standardRelations)
	})
	return standard
}

// Stems returns the stems in table order
func (r *Reference) Stems() []domain.Stem {
	return append([]domain.Stem(nil), r.stemOrder...)
}

// Branches returns the branches in table order
func (r *Reference) Branches() []domain.Branch {
	return append([]domain.Branch(nil), r.branchOrder...)
}

// Stem looks up a stem
func (r *Reference) Stem(s domain.Stem) (StemInfo, bool) {
	info, ok := r.stems[s]
	return info, ok
}

// Branch looks up a branch. The returned Qi slice is a copy.
func (r *Reference) Branch(b domain.Branch) (BranchInfo, bool) {
	info, ok := r.branches[b]
	if ok {
		info.Qi = append([]domain.QiEntry(nil), info.Qi...)
	}
	return info, ok
}

// StemGlyph maps a Chinese character to its stem
func (r *Reference) StemGlyph(g string) (domain.Stem, bool) {
	s, ok := r.stemGlyphs[g]
	return s, ok
}

// BranchGlyph maps a Chinese character to its branch
func (r *Reference) BranchGlyph(g string) (domain.Branch, bool) {
	b, ok := r.branchGlyphs[g]
	return b, ok
}

// StemElement returns the element of s, or "" when s is unknown
func (r *Reference) StemElement(s domain.Stem) domain.Element {
	return r.stems[s].Element
}

// BranchElement returns the element of b, or "" when b is unknown
func (r *Reference) BranchElement(b domain.Branch) domain.Element {
	return r.branches[b].Element
}

// Combination returns the element two stems form, if they are partners
func (r *Reference) Combination(a, b domain.Stem) (domain.Element, bool) {
	info, ok := r.stems[a]
	if !ok || info.Partner != b {
		return "", false
	}
	return info.Combines, true
}

// Clashes reports whether a and b are clash partners
func (r *Reference) Clashes(a, b domain.Branch) bool {
	ia, oka := r.branches[a]
	ib, okb := r.branches[b]
	return oka && okb && (ia.Clash == b || ib.Clash == a)
}

// Harmony returns the element a six-harmony pair forms
func (r *Reference) Harmony(a, b domain.Branch) (domain.Element, bool) {
	if info, ok := r.branches[a]; ok && info.Harmony == b {
		return info.HarmonyElement, true
	}
	if info, ok := r.branches[b]; ok && info.Harmony == a {
		return info.HarmonyElement, true
	}
	return "", false
}

// Relations returns a copy of the relation tables
func (r *Reference) Relations() Relations {
	return Relations{
		Frames:          append([]Trio(nil), r.rel.Frames...),
		Directions:      append([]Trio(nil), r.rel.Directions...),
		Punishments:     append([]Trio(nil), r.rel.Punishments...),
		PunishmentPairs: append([]Pair(nil), r.rel.PunishmentPairs...),
		SelfPunishing:   append([]domain.Branch(nil), r.rel.SelfPunishing...),
		Harms:           append([]Pair(nil), r.rel.Harms...),
		Destructions:    append([]Pair(nil), r.rel.Destructions...),
	}
}

// Phase returns the seasonal state of e when month rules. Unknown inputs are Resting.
func (r *Reference) Phase(month domain.Branch, e domain.Element) domain.Phase {
	info, ok := r.branches[month]
	if !ok || !e.Valid() || !info.Season.Valid() {
		return domain.Resting
	}
	return PhaseOf(e, info.Season)
}

// PhaseOf returns the state of e during a season ruled by element season
func PhaseOf(e, season domain.Element) domain.Phase {
	switch {
	case e == season:
		return domain.Prosperous
	case season.Generates() == e:
		return domain.Prime
	case e.Generates() == season:
		return domain.Resting
	case e.Controls() == season:
		return domain.Imprisoned
	case season.Controls() == e:
		return domain.Dead
	}
	return domain.Resting
}

// Matches reports whether the pair holds a and b in either order
func (p Pair) Matches(a, b domain.Branch) bool {
	return (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a)
}
