package risk

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// Assessor reads the latest row of each indicator's backing table and
// assembles the classified snapshot. An unreadable or missing indicator
// becomes TierUnavailable instead of failing the snapshot.
type Assessor struct {
	sentiment storage.SentimentStore
	trend     storage.TrendStore
	dominance storage.DominanceStore
	piCycle   storage.PiCycleStore
	wma200    storage.WMA200Store
	s2f       storage.S2FStore
	puell     storage.PuellStore

	thresholds Thresholds
	rule       AggregateRule

	log *zap.Logger
	now func() time.Time
}

// AssessorOptions for creating Assessor.
type AssessorOptions struct {
	SentimentStore storage.SentimentStore
	TrendStore     storage.TrendStore
	DominanceStore storage.DominanceStore
	PiCycleStore   storage.PiCycleStore
	WMA200Store    storage.WMA200Store
	S2FStore       storage.S2FStore
	PuellStore     storage.PuellStore

	// Zero values fall back to the defaults.
	Thresholds Thresholds
	Rule       AggregateRule

	Logger *zap.Logger
}

// NewAssessor creates a new snapshot assessor.
func NewAssessor(opts AssessorOptions) *Assessor {
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.Rule == (AggregateRule{}) {
		opts.Rule = DefaultAggregateRule()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Assessor{
		sentiment:  opts.SentimentStore,
		trend:      opts.TrendStore,
		dominance:  opts.DominanceStore,
		piCycle:    opts.PiCycleStore,
		wma200:     opts.WMA200Store,
		s2f:        opts.S2FStore,
		puell:      opts.PuellStore,
		thresholds: opts.Thresholds,
		rule:       opts.Rule,
		log:        opts.Logger,
		now:        time.Now,
	}
}

// reading is one indicator's raw value before classification. A nil value
// with a reason means the indicator could not be read.
type reading struct {
	value    *float64
	rendered string
	reason   string
}

func available(v float64, rendered string) reading {
	return reading{value: &v, rendered: rendered}
}

func unavailable(reason string) reading {
	return reading{rendered: "N/A", reason: reason}
}

// Snapshot classifies every indicator's latest reading and aggregates the
// overall verdict. It never fails: each indicator degrades independently
// to TierUnavailable.
func (a *Assessor) Snapshot(ctx context.Context) *domain.RiskSnapshot {
	entries := []struct {
		name  string
		bound Bound
		read  func(context.Context) reading
	}{
		{domain.IndicatorSentiment, a.thresholds.Sentiment, a.readSentiment},
		{domain.IndicatorTrend, a.thresholds.Trend, a.readTrend},
		{domain.IndicatorPiCycle, a.thresholds.PiCycleRatio, a.readPiCycle},
		{domain.IndicatorWMA200, a.thresholds.WMARatio, a.readWMA200},
		{domain.IndicatorDominance, a.thresholds.Dominance, a.readDominance},
		{domain.IndicatorS2F, a.thresholds.S2FDeviation, a.readS2F},
		{domain.IndicatorPuell, a.thresholds.Puell, a.readPuell},
	}

	snapshot := &domain.RiskSnapshot{GeneratedAt: a.now().Unix()}
	var counts domain.TierCounts
	for _, e := range entries {
		r := e.read(ctx)
		tier := Classify(r.value, e.bound)
		if tier == domain.TierUnavailable {
			a.log.Warn("indicator unavailable",
				zap.String("indicator", e.name),
				zap.String("reason", r.reason))
		}
		switch tier {
		case domain.TierHigh:
			counts.High++
		case domain.TierMedium:
			counts.Medium++
		case domain.TierLow:
			counts.Low++
		default:
			counts.Unavailable++
		}
		snapshot.Indicators = append(snapshot.Indicators, domain.IndicatorAssessment{
			Indicator: e.name,
			Value:     r.value,
			Rendered:  r.rendered,
			Tier:      tier,
		})
	}

	snapshot.Overall = Aggregate(counts, a.rule)
	return snapshot
}

func (a *Assessor) readSentiment(ctx context.Context) reading {
	obs, err := a.sentiment.Latest(ctx)
	if err != nil {
		return unavailable(err.Error())
	}
	return available(obs.Value, fmt.Sprintf("%.0f (%s)", obs.Value, obs.Classification))
}

func (a *Assessor) readTrend(ctx context.Context) reading {
	obs, err := a.trend.Latest(ctx)
	if err != nil {
		return unavailable(err.Error())
	}
	return available(obs.Score, fmt.Sprintf("%.1f", obs.Score))
}

// readPiCycle classifies the crossover by how close SMA111 sits to the
// doubled SMA350: ratio 1.0 is the cross itself.
func (a *Assessor) readPiCycle(ctx context.Context) reading {
	row, err := a.piCycle.Latest(ctx)
	if err != nil {
		return unavailable(err.Error())
	}
	if row.SMA350Doubled <= 0 {
		return unavailable("non-positive sma350x2")
	}
	return available(row.SMA111/row.SMA350Doubled, row.Signal)
}

func (a *Assessor) readWMA200(ctx context.Context) reading {
	row, err := a.wma200.Latest(ctx)
	if err != nil {
		return unavailable(err.Error())
	}
	if row.WMA200 <= 0 {
		return unavailable("non-positive 200wma")
	}
	ratio := row.BTCPrice / row.WMA200
	return available(ratio, fmt.Sprintf("%.2fx 200WMA", ratio))
}

func (a *Assessor) readDominance(ctx context.Context) reading {
	obs, err := a.dominance.Latest(ctx)
	if err != nil {
		return unavailable(err.Error())
	}
	return available(obs.Dominance, fmt.Sprintf("%.1f%%", obs.Dominance))
}

// readS2F reads the price deviation from the model price.
func (a *Assessor) readS2F(ctx context.Context) reading {
	row, err := a.s2f.Latest(ctx)
	if err != nil {
		return unavailable(err.Error())
	}
	if row.ModelPrice <= 0 {
		return unavailable("non-positive model price")
	}
	dev := row.BTCPrice / row.ModelPrice
	return available(dev, fmt.Sprintf("%.2fx model", dev))
}

func (a *Assessor) readPuell(ctx context.Context) reading {
	row, err := a.puell.Latest(ctx)
	if err != nil {
		return unavailable(err.Error())
	}
	return available(row.Multiple, fmt.Sprintf("%.2f", row.Multiple))
}
