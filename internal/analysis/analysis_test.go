package analysis

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pbaille/bazi/internal/chart"
	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/ganzhi"
	"github.com/pbaille/bazi/internal/logger"
	"github.com/pbaille/bazi/internal/strength"
	"github.com/pbaille/bazi/internal/weights"
)

func newAnalyzer(log *logger.Logger) *Analyzer {
	return New(ganzhi.Standard(), weights.DefaultParams(), strength.DefaultParams(), log)
}

func sampleSpec() domain.ChartSpec {
	return domain.ChartSpec{
		Label: "sample",
		Year:  "Bing-Zi",
		Month: "Ding-Chou",
		Day:   "Jia-Yin",
		Hour:  "Bing-Mao",
	}
}

func TestAnalyze_Pipeline(t *testing.T) {
	a := newAnalyzer(nil)

	res, err := a.AnalyzeSpec(sampleSpec(), Options{})
	require.NoError(t, err)

	assert.Len(t, res.Pillars, 4)
	assert.NotEmpty(t, res.Interactions)
	assert.Equal(t, domain.Jia, res.Assessment.DayMaster)
	assert.Equal(t, domain.Wood, res.Assessment.DayMasterElement)

	// The Zi-Chou harmony lifts earth above raw.
	assert.Greater(t, res.Adjusted.Of(domain.Earth), res.Raw.Of(domain.Earth))
	assert.NotEqual(t, res.Adjusted, res.Seasonal, "Chou month applies phase multipliers")
	assert.NotEmpty(t, res.Assessment.UsefulGod)
	assert.InDelta(t, 100.0, res.Assessment.Breakdown.Total(), 0.5)
}

func TestAnalyze_NatalOnly(t *testing.T) {
	a := newAnalyzer(nil)

	res, err := a.AnalyzeSpec(sampleSpec(), Options{NatalOnly: true})
	require.NoError(t, err)
	assert.Equal(t, res.Raw, res.Adjusted)
	assert.NotEmpty(t, res.Interactions, "interactions are still reported")
}

func TestAnalyze_Basis(t *testing.T) {
	a := newAnalyzer(nil)

	seasonal, err := a.AnalyzeSpec(sampleSpec(), Options{Basis: BasisSeasonal})
	require.NoError(t, err)
	adjusted, err := a.AnalyzeSpec(sampleSpec(), Options{Basis: BasisAdjusted})
	require.NoError(t, err)

	assert.Equal(t, seasonal.Assessment.Percent, adjusted.Assessment.Percent, "scoring always reads seasonal weights")
	want := a.engine.Balance(adjusted.Adjusted)
	assert.Equal(t, want.Ranking, adjusted.Assessment.Ranking)
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := newAnalyzer(nil)
	spec := sampleSpec()
	spec.Luck = "Geng-Wu"
	spec.Annual = "Wu-Chen"

	first, err := a.AnalyzeSpec(spec, Options{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := a.AnalyzeSpec(spec, Options{})
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestAnalyze_OverlaysOnlyAffectInteractions(t *testing.T) {
	a := newAnalyzer(nil)

	natal, err := a.AnalyzeSpec(sampleSpec(), Options{})
	require.NoError(t, err)

	spec := sampleSpec()
	spec.Luck = "Geng-Wu"
	withLuck, err := a.AnalyzeSpec(spec, Options{})
	require.NoError(t, err)

	assert.Equal(t, natal.Raw, withLuck.Raw)
	assert.Greater(t, len(withLuck.Interactions), len(natal.Interactions))
}

func TestAnalyze_MissingPillar(t *testing.T) {
	a := newAnalyzer(nil)

	_, err := a.Analyze(chart.Chart{
		Year:  domain.Pillar{Stem: domain.Jia, Branch: domain.BranchZi},
		Month: domain.Pillar{Stem: domain.Bing, Branch: domain.BranchYin},
		Day:   domain.Pillar{Stem: domain.Wu, Branch: domain.BranchChen},
	}, Options{})
	assert.ErrorIs(t, err, chart.ErrMissingPillar)

	spec := sampleSpec()
	spec.Hour = ""
	_, err = a.AnalyzeSpec(spec, Options{})
	assert.ErrorIs(t, err, chart.ErrMissingPillar)
}

func TestAnalyze_Logs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := newAnalyzer(logger.FromZap(zap.New(core)))

	_, err := a.AnalyzeSpec(sampleSpec(), Options{})
	require.NoError(t, err)

	entries := logs.FilterMessage("strength assessed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "analysis", entries[0].ContextMap()["component"])
}

func TestAnalyzeBatch(t *testing.T) {
	a := newAnalyzer(nil)

	specs := []domain.ChartSpec{
		sampleSpec(),
		{Label: "b", Year: "Jia-Zi", Month: "Bing-Yin", Day: "Wu-Chen", Hour: "Geng-Shen"},
		{Label: "c", Year: "Geng-Shen", Month: "Xin-You", Day: "Jia-Xu", Hour: "Geng-Shen"},
	}
	got, err := a.AnalyzeBatch(context.Background(), specs, Options{}, 2)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.Jia, got[0].Assessment.DayMaster)
	assert.Equal(t, domain.Wu, got[1].Assessment.DayMaster)
	assert.Equal(t, domain.Jia, got[2].Assessment.DayMaster)
}

func TestAnalyzeBatch_Error(t *testing.T) {
	a := newAnalyzer(nil)

	specs := []domain.ChartSpec{
		sampleSpec(),
		{Label: "broken", Year: "Jia-Zi", Month: "Bing-Yin", Day: "Nope-Chen", Hour: "Geng-Shen"},
	}
	_, err := a.AnalyzeBatch(context.Background(), specs, Options{}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, chart.ErrUnknownStem)
	assert.Contains(t, err.Error(), `chart 2 "broken"`)
}

func TestAnalyzeBatch_Cancelled(t *testing.T) {
	a := newAnalyzer(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.AnalyzeBatch(ctx, []domain.ChartSpec{sampleSpec()}, Options{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
