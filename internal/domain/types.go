package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Element is one of the five phases
type Element string

const (
	Wood  Element = "wood"
	Fire  Element = "fire"
	Earth Element = "earth"
	Metal Element = "metal"
	Water Element = "water"
)

// Elements lists the five elements in canonical order, which is also the tie-break order
var Elements = [5]Element{Wood, Fire, Earth, Metal, Water}

// Index returns the element's position in Elements, or -1 for an unknown value
func (e Element) Index() int {
	switch e {
	case Wood:
		return 0
	case Fire:
		return 1
	case Earth:
		return 2
	case Metal:
		return 3
	case Water:
		return 4
	}
	return -1
}

// Valid reports whether e is one of the five elements
func (e Element) Valid() bool { return e.Index() >= 0 }

// Generates returns the element e produces in the generating cycle
func (e Element) Generates() Element { return e.shift(1) }

// GeneratedBy returns the element that produces e
func (e Element) GeneratedBy() Element { return e.shift(4) }

// Controls returns the element e overcomes
func (e Element) Controls() Element { return e.shift(2) }

// ControlledBy returns the element that overcomes e
func (e Element) ControlledBy() Element { return e.shift(3) }

func (e Element) shift(n int) Element {
	i := e.Index()
	if i < 0 {
		return ""
	}
	return Elements[(i+n)%5]
}

// Polarity is yin or yang
type Polarity string

const (
	Yang Polarity = "yang"
	Yin  Polarity = "yin"
)

// Phase is the seasonal state of an element in a given month
type Phase string

const (
	Prosperous Phase = "prosperous"
	Prime      Phase = "prime"
	Resting    Phase = "resting"
	Imprisoned Phase = "imprisoned"
	Dead       Phase = "dead"
)

// Stem is a heavenly stem
type Stem string

const (
	Jia  Stem = "Jia"
	Yi   Stem = "Yi"
	Bing Stem = "Bing"
	Ding Stem = "Ding"
	Wu   Stem = "Wu"
	Ji   Stem = "Ji"
	Geng Stem = "Geng"
	Xin  Stem = "Xin"
	Ren  Stem = "Ren"
	Gui  Stem = "Gui"
)

// Branch is an earthly branch
type Branch string

// The horse branch is spelled Wu like the stem, so branch constants carry a prefix.
const (
	BranchZi   Branch = "Zi"
	BranchChou Branch = "Chou"
	BranchYin  Branch = "Yin"
	BranchMao  Branch = "Mao"
	BranchChen Branch = "Chen"
	BranchSi   Branch = "Si"
	BranchWu   Branch = "Wu"
	BranchWei  Branch = "Wei"
	BranchShen Branch = "Shen"
	BranchYou  Branch = "You"
	BranchXu   Branch = "Xu"
	BranchHai  Branch = "Hai"
)

// QiEntry is a stem carried inside a branch with its weight score out of 100
type QiEntry struct {
	Stem  Stem    `json:"stem" yaml:"stem"`
	Score float64 `json:"score" yaml:"score"`
}

// Position labels where a pillar sits in the chart
type Position string

const (
	Year    Position = "year"
	Month   Position = "month"
	Day     Position = "day"
	Hour    Position = "hour"
	Luck    Position = "luck_pillar"
	Annual  Position = "annual"
	Monthly Position = "monthly"
	Daily   Position = "daily"
	Hourly  Position = "hourly"
)

// NatalPositions are always present, in canonical order
var NatalPositions = [4]Position{Year, Month, Day, Hour}

// PeriodPositions are the optional time-period overlays, in label order
var PeriodPositions = [4]Position{Annual, Monthly, Daily, Hourly}

// NatalIndex returns 0..3 for natal positions and -1 otherwise
func (p Position) NatalIndex() int {
	for i, n := range NatalPositions {
		if p == n {
			return i
		}
	}
	return -1
}

// IsNatal reports whether p is one of the four birth pillars
func (p Position) IsNatal() bool { return p.NatalIndex() >= 0 }

// IsOverlay reports whether p is the luck pillar or a time-period pillar
func (p Position) IsOverlay() bool {
	if p == Luck {
		return true
	}
	for _, q := range PeriodPositions {
		if p == q {
			return true
		}
	}
	return false
}

// Pillar is a stem and branch at a chart position
type Pillar struct {
	Position Position  `json:"position"`
	Stem     Stem      `json:"stem"`
	Branch   Branch    `json:"branch"`
	Qi       []QiEntry `json:"qi,omitempty"`
}

func (p Pillar) String() string {
	return fmt.Sprintf("%s %s%s", p.Position, p.Stem, p.Branch)
}

// InteractionType tags a detected relationship
type InteractionType string

const (
	Clash            InteractionType = "clash"
	Harmony          InteractionType = "harmony"
	ThreeHarmony     InteractionType = "three_harmony"
	HalfThreeHarmony InteractionType = "half_three_harmony"
	DirectionalCombo InteractionType = "directional_combo"
	Punishment       InteractionType = "punishment"
	SelfPunishment   InteractionType = "self_punishment"
	Harm             InteractionType = "harm"
	Destruction      InteractionType = "destruction"
	StemCombination  InteractionType = "stem_combination"
)

// IsCombination reports whether the interaction merges pillars into a resulting element
func (t InteractionType) IsCombination() bool {
	switch t {
	case Harmony, ThreeHarmony, HalfThreeHarmony, DirectionalCombo, StemCombination:
		return true
	}
	return false
}

// Severity grades how disruptive an interaction is
type Severity string

const (
	Mild     Severity = "mild"
	Moderate Severity = "moderate"
	Severe   Severity = "severe"
)

// Interaction is one relationship found among the pillars
type Interaction struct {
	Type        InteractionType `json:"type"`
	Branches    []Branch        `json:"branches,omitempty"`
	Stems       []Stem          `json:"stems,omitempty"`
	Positions   []Position      `json:"positions"`
	Element     Element         `json:"element,omitempty"`
	Missing     Branch          `json:"missing,omitempty"`
	Adjacent    bool            `json:"adjacent,omitempty"`
	Description string          `json:"description"`
	Severity    Severity        `json:"severity"`
	Activated   bool            `json:"activated_by_overlay"`
}

// Weights holds one non-negative weight per element, indexed like Elements.
// It is a value type: every method returns a new vector.
type Weights [5]float64

// Of returns the weight of e, zero for an unknown element
func (w Weights) Of(e Element) float64 {
	i := e.Index()
	if i < 0 {
		return 0
	}
	return w[i]
}

// With returns a copy of w with e set to v
func (w Weights) With(e Element, v float64) Weights {
	if i := e.Index(); i >= 0 {
		w[i] = v
	}
	return w
}

// Plus returns a copy of w with d added to e, floored at zero
func (w Weights) Plus(e Element, d float64) Weights {
	return w.With(e, math.Max(0, w.Of(e)+d))
}

// Total sums all five weights
func (w Weights) Total() float64 {
	var t float64
	for _, v := range w {
		t += v
	}
	return t
}

// Percentages returns each element's share of the total. A zero total yields a flat 20 each.
func (w Weights) Percentages() Weights {
	total := w.Total()
	var out Weights
	for i, v := range w {
		if total <= 0 {
			out[i] = 20
		} else {
			out[i] = v / total * 100
		}
	}
	return out
}

// Map returns the weights keyed by element
func (w Weights) Map() map[Element]float64 {
	m := make(map[Element]float64, 5)
	for i, e := range Elements {
		m[e] = w[i]
	}
	return m
}

// MarshalJSON encodes the vector as an element-keyed object
func (w Weights) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Map())
}

// UnmarshalJSON decodes an element-keyed object
func (w *Weights) UnmarshalJSON(data []byte) error {
	var m map[Element]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Weights
	for e, v := range m {
		out = out.With(e, v)
	}
	*w = out
	return nil
}

// Verdict is the day master's strength tier
type Verdict string

const (
	ExtremelyStrong Verdict = "extremely_strong"
	Strong          Verdict = "strong"
	Neutral         Verdict = "neutral"
	Weak            Verdict = "weak"
	ExtremelyWeak   Verdict = "extremely_weak"
)

// FollowingType names the force a following chart yields to
type FollowingType string

const (
	FollowWealth  FollowingType = "wealth"
	FollowOfficer FollowingType = "officer"
	FollowOutput  FollowingType = "output"
	FollowMixed   FollowingType = "mixed"
)

// ElementDose is the balance improvement from dosing a single element
type ElementDose struct {
	Element     Element `json:"element"`
	Improvement float64 `json:"improvement"`
}

// PairDose is the balance improvement from dosing two elements together
type PairDose struct {
	First       Element `json:"first"`
	Second      Element `json:"second"`
	Improvement float64 `json:"improvement"`
}

// Assessment is the day master strength and useful god verdict
type Assessment struct {
	DayMaster        Stem          `json:"day_master"`
	DayMasterElement Element       `json:"day_master_element"`
	Percent          float64       `json:"day_master_percent"`
	Effective        float64       `json:"effective_percent"`
	DrainPressure    float64       `json:"drain_pressure"`
	HasRoot          bool          `json:"has_root"`
	StrongRoot       bool          `json:"strong_root"`
	Verdict          Verdict       `json:"verdict"`
	Following        bool          `json:"following"`
	FollowingType    FollowingType `json:"following_type,omitempty"`
	UsefulGod        Element       `json:"useful_god,omitempty"`
	Favorable        []Element     `json:"favorable"`
	Unfavorable      []Element     `json:"unfavorable"`
	Breakdown        Weights       `json:"breakdown"`
	Ranking          []ElementDose `json:"ranking,omitempty"`
	BestPairs        []PairDose    `json:"best_pairs,omitempty"`
}

// Analysis bundles every stage's output for one chart
type Analysis struct {
	Pillars      []Pillar      `json:"pillars"`
	Interactions []Interaction `json:"interactions"`
	Raw          Weights       `json:"raw_weights"`
	Adjusted     Weights       `json:"adjusted_weights"`
	Seasonal     Weights       `json:"seasonal_weights"`
	Assessment   Assessment    `json:"assessment"`
}

// Record is a stored analysis
type Record struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	Chart     ChartSpec `json:"chart"`
	Analysis  *Analysis `json:"analysis,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChartSpec is the textual form of a chart as typed by a user or read from a file
type ChartSpec struct {
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Year    string `json:"year" yaml:"year"`
	Month   string `json:"month" yaml:"month"`
	Day     string `json:"day" yaml:"day"`
	Hour    string `json:"hour" yaml:"hour"`
	Luck    string `json:"luck,omitempty" yaml:"luck,omitempty"`
	Annual  string `json:"annual,omitempty" yaml:"annual,omitempty"`
	Monthly string `json:"monthly,omitempty" yaml:"monthly,omitempty"`
	Daily   string `json:"daily,omitempty" yaml:"daily,omitempty"`
	Hourly  string `json:"hourly,omitempty" yaml:"hourly,omitempty"`
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
