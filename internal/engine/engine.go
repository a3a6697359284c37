// Package engine implements the supply coverage reconciliation engine: key
// generation, tiered stock aggregation, consumption-rate estimation and
// coverage-ratio computation over three run-scoped tabular extracts.
package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// MissingInputError marks the fatal absence of a required input table. A run
// refuses to produce a partially joined report.
type MissingInputError struct {
	Table string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("required input table is empty: %s", e.Table)
}

// Inputs are the freshly loaded, run-scoped tables for one analysis run.
type Inputs struct {
	Catalog []CatalogRow
	Ledger  []LedgerRecord
	Stock   []StockRecord

	// OperationalDays is the externally supplied count of active days per
	// location identity.
	OperationalDays map[string]int

	Season string
}

// Engine runs the reconciliation pipeline. It holds no mutable state between
// runs; each Run operates only on its inputs.
type Engine struct {
	opts Options
}

// New builds an Engine, rejecting option sets with colliding tier codes.
func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine's code configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Run executes one full analysis: tier split and consumption estimation run
// independently, then join into the coverage report and the per-material
// aggregate. Partial input defects degrade to counted exclusions; only the
// total absence of a required table is fatal.
func (e *Engine) Run(ctx context.Context, in Inputs) (*Result, error) {
	for table, n := range map[string]int{
		"reference catalog": len(in.Catalog),
		"movement ledger":   len(in.Ledger),
		"stock snapshot":    len(in.Stock),
	} {
		if n == 0 {
			return nil, &MissingInputError{Table: table}
		}
	}

	var (
		tiers       TierTables
		tierDefects Defects
		consumption []ConsumptionRecord
		consDefects Defects
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tiers, tierDefects, err = e.opts.SplitTiers(in.Stock)
		return err
	})
	g.Go(func() error {
		consumption, consDefects = e.opts.EstimateConsumption(in.Ledger, in.OperationalDays)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, joinDefects := e.opts.ComputeCoverage(CoverageInputs{
		Catalog:     in.Catalog,
		Tiers:       tiers,
		Consumption: consumption,
		Season:      in.Season,
	})

	return &Result{
		Rows:       rows,
		Materials:  AggregateByMaterial(rows),
		Defects:    mergeDefects(tierDefects, consDefects, joinDefects),
		ExecutedAt: time.Now(),
	}, nil
}

func mergeDefects(all ...Defects) Defects {
	var m Defects
	for _, d := range all {
		m.DroppedStockRows += d.DroppedStockRows
		m.UnresolvedKeys += d.UnresolvedKeys
		m.ExcludedKeys += d.ExcludedKeys
		m.DuplicateCatalogKeys += d.DuplicateCatalogKeys
		m.ZeroYieldRows += d.ZeroYieldRows
	}
	return m
}
