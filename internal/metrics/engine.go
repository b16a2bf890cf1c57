package metrics

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// Read-window bounds per indicator: the largest rolling window each needs
// plus headroom, so a recompute never loads the whole table.
const (
	piCycleLookback = 400
	wmaLookback     = 1500
	s2fLookback     = 1825
	puellLookback   = 400
)

// Engine rebuilds the four derived indicator tables from the raw series.
// Each rebuild replaces the table wholesale; indicators fail or skip
// independently so one short series never blocks the others.
type Engine struct {
	prices  storage.PriceStore
	supply  storage.SupplyStore
	piCycle storage.PiCycleStore
	wma200  storage.WMA200Store
	s2f     storage.S2FStore
	puell   storage.PuellStore

	assetID  string
	issuance domain.IssuanceParams
	s2fCal   domain.S2FCalibration

	log *zap.Logger
}

// Options for creating Engine.
type Options struct {
	PriceStore   storage.PriceStore
	SupplyStore  storage.SupplyStore
	PiCycleStore storage.PiCycleStore
	WMA200Store  storage.WMA200Store
	S2FStore     storage.S2FStore
	PuellStore   storage.PuellStore

	// AssetID selects the price series, normally "bitcoin".
	AssetID string

	// Zero values fall back to the current defaults.
	Issuance       domain.IssuanceParams
	S2FCalibration domain.S2FCalibration

	Logger *zap.Logger
}

// NewEngine creates a new derived-metric engine.
func NewEngine(opts Options) *Engine {
	if opts.Issuance == (domain.IssuanceParams{}) {
		opts.Issuance = domain.DefaultIssuance()
	}
	if opts.S2FCalibration == (domain.S2FCalibration{}) {
		opts.S2FCalibration = domain.DefaultS2FCalibration()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		prices:   opts.PriceStore,
		supply:   opts.SupplyStore,
		piCycle:  opts.PiCycleStore,
		wma200:   opts.WMA200Store,
		s2f:      opts.S2FStore,
		puell:    opts.PuellStore,
		assetID:  opts.AssetID,
		issuance: opts.Issuance,
		s2fCal:   opts.S2FCalibration,
		log:      opts.Logger,
	}
}

// IndicatorOutcome reports one indicator's rebuild.
type IndicatorOutcome struct {
	Indicator string
	Rows      int    // rows written on success
	Skipped   string // non-empty when skipped for insufficient history
	Err       error  // non-nil on failure
}

// RecomputeResult contains the per-indicator outcomes of one full run.
type RecomputeResult struct {
	Outcomes []IndicatorOutcome
}

// Failed returns the outcomes that errored.
func (r *RecomputeResult) Failed() []IndicatorOutcome {
	var failed []IndicatorOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// RecomputeAll rebuilds every derived table. It always runs all four;
// the result carries each indicator's rows-written, skip, or error.
func (e *Engine) RecomputeAll(ctx context.Context) *RecomputeResult {
	result := &RecomputeResult{}
	result.Outcomes = append(result.Outcomes,
		e.run(ctx, domain.IndicatorPiCycle, e.RecomputePiCycle),
		e.run(ctx, domain.IndicatorWMA200, e.RecomputeWMA200),
		e.run(ctx, domain.IndicatorS2F, e.RecomputeS2F),
		e.run(ctx, domain.IndicatorPuell, e.RecomputePuell),
	)
	return result
}

func (e *Engine) run(ctx context.Context, name string, fn func(context.Context) (int, error)) IndicatorOutcome {
	rows, err := fn(ctx)
	switch {
	case errors.Is(err, storage.ErrInsufficientHistory):
		e.log.Info("indicator skipped",
			zap.String("indicator", name),
			zap.String("reason", err.Error()))
		return IndicatorOutcome{Indicator: name, Skipped: err.Error()}
	case err != nil:
		e.log.Error("indicator recompute failed",
			zap.String("indicator", name),
			zap.Error(err))
		return IndicatorOutcome{Indicator: name, Err: err}
	default:
		e.log.Info("indicator rebuilt",
			zap.String("indicator", name),
			zap.Int("rows", rows))
		return IndicatorOutcome{Indicator: name, Rows: rows}
	}
}

// RecomputePiCycle rebuilds the pi_cycle table.
func (e *Engine) RecomputePiCycle(ctx context.Context) (int, error) {
	series, err := e.prices.Series(ctx, e.assetID, piCycleLookback)
	if err != nil {
		return 0, fmt.Errorf("load price series: %w", err)
	}
	rows, err := BuildPiCycle(series)
	if err != nil {
		return 0, err
	}
	if err := e.piCycle.Replace(ctx, rows); err != nil {
		return 0, fmt.Errorf("replace pi_cycle: %w", err)
	}
	return len(rows), nil
}

// RecomputeWMA200 rebuilds the wma_200 table.
func (e *Engine) RecomputeWMA200(ctx context.Context) (int, error) {
	series, err := e.prices.Series(ctx, e.assetID, wmaLookback)
	if err != nil {
		return 0, fmt.Errorf("load price series: %w", err)
	}
	rows, err := BuildWMA200(series)
	if err != nil {
		return 0, err
	}
	if err := e.wma200.Replace(ctx, rows); err != nil {
		return 0, fmt.Errorf("replace wma_200: %w", err)
	}
	return len(rows), nil
}

// RecomputeS2F rebuilds the s2f_model table from the price series and the
// latest supply snapshot. No snapshot counts as insufficient history.
func (e *Engine) RecomputeS2F(ctx context.Context) (int, error) {
	series, err := e.prices.Series(ctx, e.assetID, s2fLookback)
	if err != nil {
		return 0, fmt.Errorf("load price series: %w", err)
	}
	snap, err := e.supply.Latest(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("%w: no supply snapshot", storage.ErrInsufficientHistory)
	}
	if err != nil {
		return 0, fmt.Errorf("load supply snapshot: %w", err)
	}
	rows, err := BuildS2F(series, snap.CirculatingSupply, e.issuance, e.s2fCal)
	if err != nil {
		return 0, err
	}
	if err := e.s2f.Replace(ctx, rows); err != nil {
		return 0, fmt.Errorf("replace s2f_model: %w", err)
	}
	return len(rows), nil
}

// RecomputePuell rebuilds the puell_multiple table.
func (e *Engine) RecomputePuell(ctx context.Context) (int, error) {
	series, err := e.prices.Series(ctx, e.assetID, puellLookback)
	if err != nil {
		return 0, fmt.Errorf("load price series: %w", err)
	}
	rows, err := BuildPuell(series, e.issuance)
	if err != nil {
		return 0, err
	}
	if err := e.puell.Replace(ctx, rows); err != nil {
		return 0, fmt.Errorf("replace puell_multiple: %w", err)
	}
	return len(rows), nil
}
