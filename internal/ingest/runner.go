// Package ingest drives one fetch-and-merge cycle across all configured
// upstream sources.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cycle-radar/internal/fetch"
	"cycle-radar/internal/merge"
	"cycle-radar/internal/storage"
)

// Runner fetches every source and merges each returned batch into its raw
// table. Sources are isolated: one failing source is reported and the rest
// still run.
type Runner struct {
	sources []fetch.Source
	engine  *merge.Engine
	tables  map[string]storage.RawTable
	log     *zap.Logger
}

// Options for creating Runner.
type Options struct {
	Sources []fetch.Source
	Engine  *merge.Engine

	// Tables maps raw table names to their stores. A batch naming a table
	// absent here fails its source.
	Tables map[string]storage.RawTable

	Logger *zap.Logger
}

// NewRunner creates a new ingest runner.
func NewRunner(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{
		sources: opts.Sources,
		engine:  opts.Engine,
		tables:  opts.Tables,
		log:     opts.Logger,
	}
}

// SourceReport is one source's outcome: rows inserted per table, and the
// error that stopped it, if any.
type SourceReport struct {
	Source   string
	Inserted map[string]int
	Err      error
}

// RunResult contains the per-source reports of one ingest cycle.
type RunResult struct {
	Reports []SourceReport
}

// Inserted sums rows inserted per table across all sources.
func (r *RunResult) Inserted() map[string]int {
	total := make(map[string]int)
	for _, rep := range r.Reports {
		for table, n := range rep.Inserted {
			total[table] += n
		}
	}
	return total
}

// Failed returns the reports of sources that errored.
func (r *RunResult) Failed() []SourceReport {
	var failed []SourceReport
	for _, rep := range r.Reports {
		if rep.Err != nil {
			failed = append(failed, rep)
		}
	}
	return failed
}

// Run executes one full cycle: fetch every source, merge every batch.
func (r *Runner) Run(ctx context.Context) *RunResult {
	result := &RunResult{}
	for _, src := range r.sources {
		report := r.runSource(ctx, src)
		if report.Err != nil {
			r.log.Error("source failed",
				zap.String("source", src.Name()),
				zap.Error(report.Err))
		} else {
			r.log.Info("source merged",
				zap.String("source", src.Name()),
				zap.Any("inserted", report.Inserted))
		}
		result.Reports = append(result.Reports, report)
	}
	return result
}

func (r *Runner) runSource(ctx context.Context, src fetch.Source) SourceReport {
	report := SourceReport{Source: src.Name(), Inserted: make(map[string]int)}

	batches, err := src.Fetch(ctx)
	if err != nil {
		report.Err = fmt.Errorf("fetch: %w", err)
		return report
	}

	for _, batch := range batches {
		table, ok := r.tables[batch.Table]
		if !ok {
			report.Err = fmt.Errorf("%w: no store for table %q", storage.ErrMalformedBatch, batch.Table)
			return report
		}
		inserted, err := r.engine.Merge(ctx, table, batch.Rows)
		if err != nil {
			report.Err = fmt.Errorf("merge into %s: %w", batch.Table, err)
			return report
		}
		report.Inserted[batch.Table] += inserted
	}
	return report
}
