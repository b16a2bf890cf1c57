// Package app wires stores, sources, and engines from configuration.
// The refresh, scheduler, and server commands all assemble the same graph.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cycle-radar/internal/config"
	"cycle-radar/internal/fetch"
	"cycle-radar/internal/ingest"
	"cycle-radar/internal/merge"
	"cycle-radar/internal/metrics"
	"cycle-radar/internal/risk"
	"cycle-radar/internal/storage"
	chstore "cycle-radar/internal/storage/clickhouse"
	"cycle-radar/internal/storage/memory"
	"cycle-radar/internal/storage/migrations"
	pgstore "cycle-radar/internal/storage/postgres"
)

// App holds the wired component graph for one process.
type App struct {
	Cfg *config.Config
	Log *zap.Logger

	Prices    storage.PriceStore
	Sentiment storage.SentimentStore
	Trend     storage.TrendStore
	Macro     storage.MacroStore
	Supply    storage.SupplyStore
	Dominance storage.DominanceStore

	PiCycle storage.PiCycleStore
	WMA200  storage.WMA200Store
	S2F     storage.S2FStore
	Puell   storage.PuellStore

	Runner   *ingest.Runner
	Metrics  *metrics.Engine
	Assessor *risk.Assessor

	pool   *pgstore.Pool
	chConn *chstore.Conn
}

// New builds the application graph. Postgres (when selected) is migrated on
// startup; a configured ClickHouse DSN moves the derived tables there.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: log}

	if err := a.buildStores(ctx); err != nil {
		return nil, err
	}
	a.buildEngines()
	return a, nil
}

func (a *App) buildStores(ctx context.Context) error {
	switch a.Cfg.Storage.Driver {
	case "postgres":
		pool, err := pgstore.NewPool(ctx, a.Cfg.Storage.PostgresDSN)
		if err != nil {
			return err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("migrate postgres: %w", err)
		}
		a.pool = pool
		a.Prices = pgstore.NewPriceStore(pool)
		a.Sentiment = pgstore.NewSentimentStore(pool)
		a.Trend = pgstore.NewTrendStore(pool)
		a.Macro = pgstore.NewMacroStore(pool)
		a.Supply = pgstore.NewSupplyStore(pool)
		a.Dominance = pgstore.NewDominanceStore(pool)
		a.PiCycle = pgstore.NewPiCycleStore(pool)
		a.WMA200 = pgstore.NewWMA200Store(pool)
		a.S2F = pgstore.NewS2FStore(pool)
		a.Puell = pgstore.NewPuellStore(pool)
	default:
		a.Prices = memory.NewPriceStore()
		a.Sentiment = memory.NewSentimentStore()
		a.Trend = memory.NewTrendStore()
		a.Macro = memory.NewMacroStore()
		a.Supply = memory.NewSupplyStore()
		a.Dominance = memory.NewDominanceStore()
		a.PiCycle = memory.NewPiCycleStore()
		a.WMA200 = memory.NewWMA200Store()
		a.S2F = memory.NewS2FStore()
		a.Puell = memory.NewPuellStore()
	}

	if dsn := a.Cfg.Storage.ClickhouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			a.closeConnections()
			return fmt.Errorf("migrate clickhouse: %w", err)
		}
		a.chConn = conn
		a.PiCycle = chstore.NewPiCycleStore(conn)
		a.WMA200 = chstore.NewWMA200Store(conn)
		a.S2F = chstore.NewS2FStore(conn)
		a.Puell = chstore.NewPuellStore(conn)
	}
	return nil
}

func (a *App) buildEngines() {
	cfg := a.Cfg
	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}

	sources := []fetch.Source{
		fetch.NewCoinGecko(fetch.CoinGeckoOptions{
			BaseURL:      cfg.Fetch.CoingeckoBaseURL,
			Client:       httpClient,
			PriceStore:   a.Prices,
			Assets:       cfg.Fetch.Assets,
			BackfillDays: cfg.Fetch.BackfillDays,
			Logger:       a.Log,
		}),
		fetch.NewFearGreed(fetch.FearGreedOptions{
			BaseURL:        cfg.Fetch.FearGreedBaseURL,
			Client:         httpClient,
			SentimentStore: a.Sentiment,
			Limit:          cfg.Fetch.FearGreedLimit,
			Logger:         a.Log,
		}),
	}
	if cfg.Fetch.TrendFile != "" {
		sources = append(sources, fetch.NewFileSource(cfg.Fetch.TrendFile))
	}
	if cfg.Fetch.MacroFile != "" {
		sources = append(sources, fetch.NewFileSource(cfg.Fetch.MacroFile))
	}

	a.Runner = ingest.NewRunner(ingest.Options{
		Sources: sources,
		Engine:  merge.NewEngine(a.Log),
		Tables: map[string]storage.RawTable{
			a.Prices.Spec().Name:    a.Prices,
			a.Sentiment.Spec().Name: a.Sentiment,
			a.Trend.Spec().Name:     a.Trend,
			a.Macro.Spec().Name:     a.Macro,
			a.Supply.Spec().Name:    a.Supply,
			a.Dominance.Spec().Name: a.Dominance,
		},
		Logger: a.Log,
	})

	a.Metrics = metrics.NewEngine(metrics.Options{
		PriceStore:     a.Prices,
		SupplyStore:    a.Supply,
		PiCycleStore:   a.PiCycle,
		WMA200Store:    a.WMA200,
		S2FStore:       a.S2F,
		PuellStore:     a.Puell,
		AssetID:        cfg.Model.AssetID,
		Issuance:       cfg.Model.Issuance(),
		S2FCalibration: cfg.Model.S2FCalibration(),
		Logger:         a.Log,
	})

	a.Assessor = risk.NewAssessor(risk.AssessorOptions{
		SentimentStore: a.Sentiment,
		TrendStore:     a.Trend,
		DominanceStore: a.Dominance,
		PiCycleStore:   a.PiCycle,
		WMA200Store:    a.WMA200,
		S2FStore:       a.S2F,
		PuellStore:     a.Puell,
		Thresholds:     cfg.Thresholds.Thresholds(),
		Rule:           cfg.Overall.Rule(),
		Logger:         a.Log,
	})
}

// RunCycle executes one ingest-then-recompute pass. Failures inside the
// cycle are isolated per source and per indicator; the joined error reports
// them without having blocked the rest.
func (a *App) RunCycle(ctx context.Context) error {
	var errs []error

	ingestResult := a.Runner.Run(ctx)
	for _, rep := range ingestResult.Failed() {
		errs = append(errs, fmt.Errorf("source %s: %w", rep.Source, rep.Err))
	}
	a.Log.Info("ingest cycle finished", zap.Any("inserted", ingestResult.Inserted()))

	recompute := a.Metrics.RecomputeAll(ctx)
	for _, o := range recompute.Failed() {
		errs = append(errs, fmt.Errorf("indicator %s: %w", o.Indicator, o.Err))
	}

	return errors.Join(errs...)
}

// Close releases database connections.
func (a *App) Close() {
	a.closeConnections()
}

func (a *App) closeConnections() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.chConn != nil {
		a.chConn.Close()
		a.chConn = nil
	}
}
