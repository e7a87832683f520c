package weights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbaille/bazi/internal/chart"
	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
)

func pillars(t *testing.T, c chart.Chart) []domain.Pillar {
	t.Helper()
	ps, err := chart.NewRegistry(ganzhi.Standard()).Pillars(c)
	if err != nil {
		t.Fatalf("Pillars() error = %v", err)
	}
	return ps
}

// Jia-Zi, Bing-Yin, Wu-Chen, Geng-Shen
func sample() chart.Chart {
	return chart.Chart{
		Year:  domain.Pillar{Stem: domain.Jia, Branch: domain.BranchZi},
		Month: domain.Pillar{Stem: domain.Bing, Branch: domain.BranchYin},
		Day:   domain.Pillar{Stem: domain.Wu, Branch: domain.BranchChen},
		Hour:  domain.Pillar{Stem: domain.Geng, Branch: domain.BranchShen},
	}
}

func TestRaw_Conservation(t *testing.T) {
	acc := New(ganzhi.Standard(), DefaultParams())
	ps := pillars(t, sample())

	w := acc.Raw(ps)

	var want float64
	for _, p := range ps {
		want += 1.0
		for _, q := range p.Qi {
			want += q.Score / 100
		}
	}
	assert.InDelta(t, want, w.Total(), 1e-9)
	assert.InDelta(t, 9.5, w.Total(), 1e-9)

	assert.InDelta(t, 2.3, w.Of(domain.Wood), 1e-9)
	assert.InDelta(t, 1.3, w.Of(domain.Fire), 1e-9)
	assert.InDelta(t, 2.4, w.Of(domain.Earth), 1e-9)
	assert.InDelta(t, 2.0, w.Of(domain.Metal), 1e-9)
	assert.InDelta(t, 1.5, w.Of(domain.Water), 1e-9)
}

func TestRaw_IgnoresOverlays(t *testing.T) {
	acc := New(ganzhi.Standard(), DefaultParams())

	c := sample()
	luck := domain.Pillar{Stem: domain.Ren, Branch: domain.BranchHai}
	c.Luck = &luck

	assert.Equal(t, acc.Raw(pillars(t, sample())), acc.Raw(pillars(t, c)))
}

func TestAdjust_CombinationBonus(t *testing.T) {
	acc := New(ganzhi.Standard(), DefaultParams())
	ps := pillars(t, sample())
	raw := acc.Raw(ps)

	// Earth shows on the Wu day stem, so the harmony transforms.
	earth := []domain.Interaction{{Type: domain.Harmony, Element: domain.Earth, Branches: []domain.Branch{domain.BranchZi, domain.BranchChou}}}
	got := acc.Adjust(raw, ps, earth)
	assert.InDelta(t, raw.Of(domain.Earth)+0.8, got.Of(domain.Earth), 1e-9)

	// No water stem is visible, so the frame only combines.
	water := []domain.Interaction{{Type: domain.ThreeHarmony, Element: domain.Water}}
	got = acc.Adjust(raw, ps, water)
	assert.InDelta(t, raw.Of(domain.Water)+0.8, got.Of(domain.Water), 1e-9)

	half := []domain.Interaction{{Type: domain.HalfThreeHarmony, Element: domain.Wood}}
	got = acc.Adjust(raw, ps, half)
	assert.InDelta(t, raw.Of(domain.Wood)+0.6, got.Of(domain.Wood), 1e-9)

	// Input is untouched.
	assert.Equal(t, acc.Raw(ps), raw)
}

func TestAdjust_ClashPenaltyFloored(t *testing.T) {
	acc := New(ganzhi.Standard(), DefaultParams())
	ps := pillars(t, sample())

	w := domain.Weights{}.With(domain.Water, 1.0).With(domain.Fire, 0.1)
	clash := []domain.Interaction{{Type: domain.Clash, Branches: []domain.Branch{domain.BranchZi, domain.BranchWu}}}

	got := acc.Adjust(w, ps, clash)
	assert.InDelta(t, 0.7, got.Of(domain.Water), 1e-9)
	assert.Equal(t, 0.0, got.Of(domain.Fire))
}

func TestAdjust_IgnoresNonCombinations(t *testing.T) {
	acc := New(ganzhi.Standard(), DefaultParams())
	ps := pillars(t, sample())
	raw := acc.Raw(ps)

	other := []domain.Interaction{
		{Type: domain.Harm, Branches: []domain.Branch{domain.BranchZi, domain.BranchWei}},
		{Type: domain.Punishment, Branches: []domain.Branch{domain.BranchZi, domain.BranchMao}},
	}
	assert.Equal(t, raw, acc.Adjust(raw, ps, other))
}

func TestSeasonal(t *testing.T) {
	acc := New(ganzhi.Standard(), DefaultParams())
	ones := domain.Weights{1, 1, 1, 1, 1}

	got := acc.Seasonal(ones, domain.BranchYin)
	want := domain.Weights{1.5, 1.2, 0.6, 0.8, 1.0}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, domain.Elements[i])
	}

	assert.Equal(t, ones, acc.Seasonal(ones, "Nope"), "unknown month is neutral")
}

func TestMultiplier_Default(t *testing.T) {
	acc := New(ganzhi.Standard(), Params{})
	assert.Equal(t, 1.0, acc.Multiplier(domain.Prosperous))
}
