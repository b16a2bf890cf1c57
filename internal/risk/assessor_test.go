package risk

import (
	"context"
	"testing"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage/memory"
)

type assessorFixture struct {
	sentiment *memory.SentimentStore
	trend     *memory.TrendStore
	dominance *memory.DominanceStore
	piCycle   *memory.PiCycleStore
	wma200    *memory.WMA200Store
	s2f       *memory.S2FStore
	puell     *memory.PuellStore
	assessor  *Assessor
}

func newAssessorFixture() *assessorFixture {
	f := &assessorFixture{
		sentiment: memory.NewSentimentStore(),
		trend:     memory.NewTrendStore(),
		dominance: memory.NewDominanceStore(),
		piCycle:   memory.NewPiCycleStore(),
		wma200:    memory.NewWMA200Store(),
		s2f:       memory.NewS2FStore(),
		puell:     memory.NewPuellStore(),
	}
	f.assessor = NewAssessor(AssessorOptions{
		SentimentStore: f.sentiment,
		TrendStore:     f.trend,
		DominanceStore: f.dominance,
		PiCycleStore:   f.piCycle,
		WMA200Store:    f.wma200,
		S2FStore:       f.s2f,
		PuellStore:     f.puell,
	})
	return f
}

func indicatorByName(t *testing.T, snap *domain.RiskSnapshot, name string) domain.IndicatorAssessment {
	t.Helper()
	for _, ind := range snap.Indicators {
		if ind.Indicator == name {
			return ind
		}
	}
	t.Fatalf("indicator %s missing from snapshot", name)
	return domain.IndicatorAssessment{}
}

// Empty stores: every indicator degrades to Unavailable with "N/A", the
// snapshot itself still comes back.
func TestAssessor_AllUnavailable(t *testing.T) {
	f := newAssessorFixture()
	snap := f.assessor.Snapshot(context.Background())

	if len(snap.Indicators) != 7 {
		t.Fatalf("Expected 7 indicators, got %d", len(snap.Indicators))
	}
	for _, ind := range snap.Indicators {
		if ind.Tier != domain.TierUnavailable {
			t.Errorf("%s: tier %s, want Unavailable", ind.Indicator, ind.Tier)
		}
		if ind.Rendered != "N/A" {
			t.Errorf("%s: rendered %q, want N/A", ind.Indicator, ind.Rendered)
		}
		if ind.Value != nil {
			t.Errorf("%s: expected nil value", ind.Indicator)
		}
	}
	if snap.Overall.Counts.Unavailable != 7 {
		t.Errorf("Unavailable count = %d, want 7", snap.Overall.Counts.Unavailable)
	}
	if snap.Overall.Tier != domain.TierLow || snap.Overall.Score != 0 {
		t.Errorf("Overall = %+v, want Low/0", snap.Overall)
	}
}

// A hot-market seed: extreme sentiment, trend, and pi cycle push the
// overall verdict to High with the default cutoffs.
func TestAssessor_HighRiskScenario(t *testing.T) {
	ctx := context.Background()
	f := newAssessorFixture()

	if err := f.sentiment.AppendRows(ctx, []domain.Row{
		domain.SentimentObservation{Timestamp: 100, Value: 90, Classification: "Extreme Greed"}.Row(),
	}); err != nil {
		t.Fatalf("seed sentiment: %v", err)
	}
	if err := f.trend.AppendRows(ctx, []domain.Row{
		domain.TrendObservation{Date: "2025-11-01", Score: 95}.Row(),
	}); err != nil {
		t.Fatalf("seed trend: %v", err)
	}
	if err := f.dominance.AppendRows(ctx, []domain.Row{
		domain.DominanceSnapshot{Timestamp: 100, Dominance: 55}.Row(),
	}); err != nil {
		t.Fatalf("seed dominance: %v", err)
	}
	if err := f.piCycle.Replace(ctx, []domain.PiCycleRow{
		{Timestamp: 100, BTCPrice: 120000, SMA111: 110000, SMA350Doubled: 100000, Signal: domain.PiSignalCrossed},
	}); err != nil {
		t.Fatalf("seed pi cycle: %v", err)
	}
	if err := f.wma200.Replace(ctx, []domain.WMA200Row{
		{Timestamp: 100, BTCPrice: 120000, WMA200: 80000},
	}); err != nil {
		t.Fatalf("seed wma: %v", err)
	}
	if err := f.s2f.Replace(ctx, []domain.S2FRow{
		{Timestamp: 100, BTCPrice: 120000, Ratio: 120, ModelPrice: 100000},
	}); err != nil {
		t.Fatalf("seed s2f: %v", err)
	}
	if err := f.puell.Replace(ctx, []domain.PuellRow{
		{Timestamp: 100, BTCPrice: 120000, Multiple: 1.2},
	}); err != nil {
		t.Fatalf("seed puell: %v", err)
	}

	snap := f.assessor.Snapshot(ctx)

	if got := indicatorByName(t, snap, domain.IndicatorSentiment); got.Tier != domain.TierHigh {
		t.Errorf("sentiment tier %s, want High", got.Tier)
	}
	if got := indicatorByName(t, snap, domain.IndicatorTrend); got.Tier != domain.TierHigh {
		t.Errorf("trend tier %s, want High", got.Tier)
	}
	// SMA111/SMA350x2 = 1.1, at or above the 1.0 bound.
	pi := indicatorByName(t, snap, domain.IndicatorPiCycle)
	if pi.Tier != domain.TierHigh {
		t.Errorf("pi cycle tier %s, want High", pi.Tier)
	}
	if pi.Rendered != domain.PiSignalCrossed {
		t.Errorf("pi cycle rendered %q, want crossed label", pi.Rendered)
	}
	// 120000/80000 = 1.5x: below the 2.0 medium bound.
	if got := indicatorByName(t, snap, domain.IndicatorWMA200); got.Tier != domain.TierLow {
		t.Errorf("wma tier %s, want Low", got.Tier)
	}
	// Dominance 55% is above the 48 medium bound on the inverted scale.
	if got := indicatorByName(t, snap, domain.IndicatorDominance); got.Tier != domain.TierLow {
		t.Errorf("dominance tier %s, want Low", got.Tier)
	}
	// 120000/100000 = 1.2x model: below 1.7.
	if got := indicatorByName(t, snap, domain.IndicatorS2F); got.Tier != domain.TierLow {
		t.Errorf("s2f tier %s, want Low", got.Tier)
	}
	if got := indicatorByName(t, snap, domain.IndicatorPuell); got.Tier != domain.TierLow {
		t.Errorf("puell tier %s, want Low", got.Tier)
	}

	if snap.Overall.Tier != domain.TierHigh {
		t.Errorf("Overall tier %s, want High", snap.Overall.Tier)
	}
	if snap.Overall.Counts != (domain.TierCounts{High: 3, Low: 4}) {
		t.Errorf("Counts = %+v, want 3 high / 4 low", snap.Overall.Counts)
	}
}

// One missing table degrades that indicator only; the rest classify.
func TestAssessor_PartialAvailability(t *testing.T) {
	ctx := context.Background()
	f := newAssessorFixture()

	if err := f.sentiment.AppendRows(ctx, []domain.Row{
		domain.SentimentObservation{Timestamp: 100, Value: 70, Classification: "Greed"}.Row(),
	}); err != nil {
		t.Fatalf("seed sentiment: %v", err)
	}

	snap := f.assessor.Snapshot(ctx)

	sentiment := indicatorByName(t, snap, domain.IndicatorSentiment)
	if sentiment.Tier != domain.TierMedium {
		t.Errorf("sentiment tier %s, want Medium", sentiment.Tier)
	}
	if sentiment.Rendered != "70 (Greed)" {
		t.Errorf("sentiment rendered %q", sentiment.Rendered)
	}
	if got := indicatorByName(t, snap, domain.IndicatorTrend); got.Tier != domain.TierUnavailable {
		t.Errorf("trend tier %s, want Unavailable", got.Tier)
	}
	if snap.Overall.Counts != (domain.TierCounts{Medium: 1, Unavailable: 6}) {
		t.Errorf("Counts = %+v", snap.Overall.Counts)
	}
	// 1 medium of 1 conclusive: score 0.5.
	if snap.Overall.Score != 0.5 {
		t.Errorf("Score = %f, want 0.5", snap.Overall.Score)
	}
}

// A degenerate derived row guards division instead of producing a bogus
// classification.
func TestAssessor_DegenerateRowsUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newAssessorFixture()

	if err := f.wma200.Replace(ctx, []domain.WMA200Row{{Timestamp: 100, BTCPrice: 50000, WMA200: 0}}); err != nil {
		t.Fatalf("seed wma: %v", err)
	}
	if err := f.s2f.Replace(ctx, []domain.S2FRow{{Timestamp: 100, BTCPrice: 50000, ModelPrice: 0}}); err != nil {
		t.Fatalf("seed s2f: %v", err)
	}

	snap := f.assessor.Snapshot(ctx)
	if got := indicatorByName(t, snap, domain.IndicatorWMA200); got.Tier != domain.TierUnavailable {
		t.Errorf("wma tier %s, want Unavailable", got.Tier)
	}
	if got := indicatorByName(t, snap, domain.IndicatorS2F); got.Tier != domain.TierUnavailable {
		t.Errorf("s2f tier %s, want Unavailable", got.Tier)
	}
}
