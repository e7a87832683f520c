package interaction

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
)

func p(pos domain.Position, stem domain.Stem, branch domain.Branch) domain.Pillar {
	return domain.Pillar{Position: pos, Stem: stem, Branch: branch}
}

func ofType(in []domain.Interaction, t domain.InteractionType) []domain.Interaction {
	var out []domain.Interaction
	for _, rec := range in {
		if rec.Type == t {
			out = append(out, rec)
		}
	}
	return out
}

func withElement(in []domain.Interaction, el domain.Element) []domain.Interaction {
	var out []domain.Interaction
	for _, rec := range in {
		if rec.Element == el {
			out = append(out, rec)
		}
	}
	return out
}

// Zi, Chou, Yin, Mao on year, month, day, hour with a Jia day master.
func ziChouYinMao() []domain.Pillar {
	return []domain.Pillar{
		p(domain.Year, domain.Bing, domain.BranchZi),
		p(domain.Month, domain.Ding, domain.BranchChou),
		p(domain.Day, domain.Jia, domain.BranchYin),
		p(domain.Hour, domain.Bing, domain.BranchMao),
	}
}

func TestDetect_SixHarmony(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	got := ofType(d.Detect(ziChouYinMao()), domain.Harmony)
	require.Len(t, got, 1)

	rec := got[0]
	assert.ElementsMatch(t, []domain.Branch{domain.BranchZi, domain.BranchChou}, rec.Branches)
	assert.Equal(t, domain.Earth, rec.Element)
	assert.False(t, rec.Activated)
	assert.Equal(t, domain.Mild, rec.Severity)
}

func TestDetect_NatalNeverActivated(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	for _, rec := range d.Detect(ziChouYinMao()) {
		assert.False(t, rec.Activated, "%s %v", rec.Type, rec.Branches)
	}
}

func TestDetect_ClashActivatedByLuck(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	pillars := append(ziChouYinMao(), p(domain.Luck, domain.Geng, domain.BranchWu))
	got := ofType(d.Detect(pillars), domain.Clash)
	require.Len(t, got, 1)

	rec := got[0]
	assert.ElementsMatch(t, []domain.Branch{domain.BranchZi, domain.BranchWu}, rec.Branches)
	assert.Equal(t, []domain.Position{domain.Year, domain.Luck}, rec.Positions)
	assert.True(t, rec.Activated)
	assert.Equal(t, domain.Moderate, rec.Severity)
}

func TestDetect_ClashSeverity(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	pillars := []domain.Pillar{
		p(domain.Year, domain.Jia, domain.BranchZi),
		p(domain.Month, domain.Jia, domain.BranchChen),
		p(domain.Day, domain.Jia, domain.BranchXu),
		p(domain.Hour, domain.Jia, domain.BranchWu),
	}
	got := ofType(d.Detect(pillars), domain.Clash)
	require.Len(t, got, 2)

	for _, rec := range got {
		switch {
		case rec.Positions[0] == domain.Year:
			// Year and hour sit apart and miss the day master.
			assert.Equal(t, domain.Mild, rec.Severity)
		default:
			assert.Equal(t, domain.Severe, rec.Severity)
		}
	}
}

func TestDetect_FullPunishment(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	pillars := []domain.Pillar{
		p(domain.Year, domain.Jia, domain.BranchYin),
		p(domain.Month, domain.Bing, domain.BranchSi),
		p(domain.Day, domain.Geng, domain.BranchShen),
		p(domain.Hour, domain.Wu, domain.BranchWu),
	}
	got := ofType(d.Detect(pillars), domain.Punishment)
	require.Len(t, got, 1)

	rec := got[0]
	assert.Equal(t, []domain.Branch{domain.BranchYin, domain.BranchSi, domain.BranchShen}, rec.Branches)
	assert.Equal(t, domain.Severe, rec.Severity)
	assert.Empty(t, rec.Missing)
}

func TestDetect_PartialPunishment(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	pillars := []domain.Pillar{
		p(domain.Year, domain.Jia, domain.BranchYin),
		p(domain.Month, domain.Bing, domain.BranchSi),
		p(domain.Day, domain.Geng, domain.BranchZi),
		p(domain.Hour, domain.Wu, domain.BranchWu),
	}
	got := ofType(d.Detect(pillars), domain.Punishment)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Branches, 2)
	assert.Equal(t, domain.BranchShen, got[0].Missing)
	assert.Equal(t, domain.Moderate, got[0].Severity)
}

func TestDetect_HalfUpgradesToFull(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	natal := []domain.Pillar{
		p(domain.Year, domain.Geng, domain.BranchShen),
		p(domain.Month, domain.Jia, domain.BranchZi),
		p(domain.Day, domain.Bing, domain.BranchYin),
		p(domain.Hour, domain.Ding, domain.BranchMao),
	}

	before := withElement(d.Detect(natal), domain.Water)
	half := ofType(before, domain.HalfThreeHarmony)
	require.Len(t, half, 1)
	assert.Equal(t, domain.BranchChen, half[0].Missing)
	assert.Empty(t, ofType(before, domain.ThreeHarmony))

	withLuck := append(append([]domain.Pillar(nil), natal...), p(domain.Luck, domain.Wu, domain.BranchChen))
	after := withElement(d.Detect(withLuck), domain.Water)
	full := ofType(after, domain.ThreeHarmony)
	require.Len(t, full, 1, "frame split across natal and luck still completes")
	assert.Empty(t, ofType(after, domain.HalfThreeHarmony))
	assert.True(t, full[0].Activated)
	assert.Equal(t, []domain.Position{domain.Year, domain.Month, domain.Luck}, full[0].Positions)
}

func TestDetect_OverlayRepeatingNatalFrame(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	natal := []domain.Pillar{
		p(domain.Year, domain.Geng, domain.BranchShen),
		p(domain.Month, domain.Jia, domain.BranchZi),
		p(domain.Day, domain.Bing, domain.BranchChen),
		p(domain.Hour, domain.Ding, domain.BranchMao),
	}
	withLuck := append(append([]domain.Pillar(nil), natal...), p(domain.Luck, domain.Ren, domain.BranchZi))

	full := ofType(withElement(d.Detect(withLuck), domain.Water), domain.ThreeHarmony)
	require.Len(t, full, 1)
	assert.Equal(t, []domain.Position{domain.Year, domain.Month, domain.Day, domain.Luck}, full[0].Positions)
	assert.False(t, full[0].Activated, "the frame was already complete on natal pillars")

	// Completing a natal half through an overlay does activate it.
	natal[2] = p(domain.Day, domain.Bing, domain.BranchYin)
	withAnnual := append(append([]domain.Pillar(nil), natal...), p(domain.Annual, domain.Wu, domain.BranchChen))
	full = ofType(withElement(d.Detect(withAnnual), domain.Water), domain.ThreeHarmony)
	require.Len(t, full, 1)
	assert.True(t, full[0].Activated)
}

func TestDetect_DirectionalNeedsAllThree(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	pillars := []domain.Pillar{
		p(domain.Year, domain.Jia, domain.BranchYin),
		p(domain.Month, domain.Jia, domain.BranchMao),
		p(domain.Day, domain.Jia, domain.BranchZi),
		p(domain.Hour, domain.Jia, domain.BranchZi),
	}
	assert.Empty(t, ofType(d.Detect(pillars), domain.DirectionalCombo))

	pillars[3] = p(domain.Hour, domain.Jia, domain.BranchChen)
	got := ofType(d.Detect(pillars), domain.DirectionalCombo)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Wood, got[0].Element)
}

func TestDetect_SelfPunishment(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	natal := []domain.Pillar{
		p(domain.Year, domain.Jia, domain.BranchChen),
		p(domain.Month, domain.Bing, domain.BranchWu),
		p(domain.Day, domain.Geng, domain.BranchWu),
		p(domain.Hour, domain.Wu, domain.BranchZi),
	}
	got := ofType(d.Detect(natal), domain.SelfPunishment)
	require.Len(t, got, 1)
	assert.Equal(t, []domain.Position{domain.Month, domain.Day}, got[0].Positions)
	assert.False(t, got[0].Activated)

	withAnnual := append(append([]domain.Pillar(nil), natal...), p(domain.Annual, domain.Ren, domain.BranchChen))
	got = ofType(d.Detect(withAnnual), domain.SelfPunishment)
	require.Len(t, got, 2)
	assert.Equal(t, domain.BranchChen, got[0].Branches[0])
	assert.Equal(t, []domain.Position{domain.Year, domain.Annual}, got[0].Positions)
	assert.True(t, got[0].Activated)

	// Zi is not self-punishing however often it repeats.
	zis := []domain.Pillar{
		p(domain.Year, domain.Jia, domain.BranchZi),
		p(domain.Month, domain.Jia, domain.BranchZi),
		p(domain.Day, domain.Jia, domain.BranchZi),
		p(domain.Hour, domain.Jia, domain.BranchZi),
	}
	assert.Empty(t, ofType(d.Detect(zis), domain.SelfPunishment))
}

func TestDetect_StemCombination(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	pillars := []domain.Pillar{
		p(domain.Year, domain.Jia, domain.BranchZi),
		p(domain.Month, domain.Ji, domain.BranchChou),
		p(domain.Day, domain.Bing, domain.BranchYin),
		p(domain.Hour, domain.Jia, domain.BranchMao),
	}
	got := ofType(d.Detect(pillars), domain.StemCombination)
	require.Len(t, got, 2, "one record per pillar pair")

	assert.Equal(t, []domain.Position{domain.Year, domain.Month}, got[0].Positions)
	assert.True(t, got[0].Adjacent)
	assert.Equal(t, domain.Earth, got[0].Element)

	assert.Equal(t, []domain.Position{domain.Month, domain.Hour}, got[1].Positions)
	assert.False(t, got[1].Adjacent)
}

func TestDetect_IndependentTypes(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	// Si and Shen both harmonize and destroy.
	pillars := []domain.Pillar{
		p(domain.Year, domain.Jia, domain.BranchSi),
		p(domain.Month, domain.Jia, domain.BranchShen),
		p(domain.Day, domain.Jia, domain.BranchZi),
		p(domain.Hour, domain.Jia, domain.BranchZi),
	}
	got := d.Detect(pillars)
	assert.Len(t, ofType(got, domain.Harmony), 1)
	assert.Len(t, ofType(got, domain.Destruction), 1)
}

func TestDetect_Deterministic(t *testing.T) {
	d := NewDetector(ganzhi.Standard())

	pillars := append(ziChouYinMao(),
		p(domain.Luck, domain.Geng, domain.BranchWu),
		p(domain.Annual, domain.Ji, domain.BranchChen),
	)
	first := d.Detect(pillars)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, d.Detect(pillars)); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}
