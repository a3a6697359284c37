package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/plantops/supply-coverage/internal/domain"
	"github.com/plantops/supply-coverage/internal/repository"
)

type coverageRepository struct {
	db *DB
}

func NewCoverageRepository(db *DB) repository.CoverageRepository {
	return &coverageRepository{db: db}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS coverage_runs (
    id               BIGSERIAL PRIMARY KEY,
    season           TEXT NOT NULL DEFAULT '',
    executed_at      TIMESTAMPTZ NOT NULL,
    row_count        INT NOT NULL DEFAULT 0,
    material_count   INT NOT NULL DEFAULT 0,
    dropped_rows     INT NOT NULL DEFAULT 0,
    excluded_keys    INT NOT NULL DEFAULT 0,
    zero_yield_rows  INT NOT NULL DEFAULT 0,
    tolerance_pct    DOUBLE PRECISION NOT NULL DEFAULT 0,
    workbook_path    TEXT NOT NULL DEFAULT '',
    export_url       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS coverage_items (
    id               BIGSERIAL PRIMARY KEY,
    run_id           BIGINT NOT NULL REFERENCES coverage_runs(id) ON DELETE CASCADE,
    item_key         TEXT NOT NULL,
    location_id      TEXT NOT NULL DEFAULT '',
    material         TEXT NOT NULL,
    material_name    TEXT NOT NULL DEFAULT '',
    family           TEXT NOT NULL DEFAULT '',
    family_2         TEXT NOT NULL DEFAULT '',
    nominal_ratio    DOUBLE PRECISION NOT NULL DEFAULT 0,
    yield            DOUBLE PRECISION NOT NULL DEFAULT 0,
    coverage_target  DOUBLE PRECISION NOT NULL DEFAULT 0,
    stock_general    DOUBLE PRECISION NOT NULL DEFAULT 0,
    stock_hub        DOUBLE PRECISION NOT NULL DEFAULT 0,
    stock_transit    DOUBLE PRECISION NOT NULL DEFAULT 0,
    stock_production DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_stock      DOUBLE PRECISION NOT NULL DEFAULT 0,
    surplus          DOUBLE PRECISION NOT NULL DEFAULT 0,
    shortage         DOUBLE PRECISION NOT NULL DEFAULT 0,
    daily_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
    theo_general     DOUBLE PRECISION NOT NULL DEFAULT 0,
    theo_hub         DOUBLE PRECISION NOT NULL DEFAULT 0,
    theo_transit     DOUBLE PRECISION NOT NULL DEFAULT 0,
    theo_production  DOUBLE PRECISION NOT NULL DEFAULT 0,
    real_general     DOUBLE PRECISION NOT NULL DEFAULT 0,
    real_hub         DOUBLE PRECISION NOT NULL DEFAULT 0,
    real_transit     DOUBLE PRECISION NOT NULL DEFAULT 0,
    real_production  DOUBLE PRECISION NOT NULL DEFAULT 0,
    season           TEXT NOT NULL DEFAULT '',
    aggregated       BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_coverage_items_run ON coverage_items(run_id, aggregated);
CREATE INDEX IF NOT EXISTS idx_coverage_items_material ON coverage_items(run_id, material);
`

func (r *coverageRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("could not ensure coverage schema: %w", err)
	}
	return nil
}

const insertRunQuery = `
INSERT INTO coverage_runs (
    season, executed_at, row_count, material_count,
    dropped_rows, excluded_keys, zero_yield_rows,
    tolerance_pct, workbook_path, export_url
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`

const insertItemQuery = `
INSERT INTO coverage_items (
    run_id, item_key, location_id, material, material_name, family, family_2,
    nominal_ratio, yield, coverage_target,
    stock_general, stock_hub, stock_transit, stock_production,
    total_stock, surplus, shortage, daily_rate,
    theo_general, theo_hub, theo_transit, theo_production,
    real_general, real_hub, real_transit, real_production,
    season, aggregated
) VALUES (
    $1, $2, $3, $4, $5, $6, $7,
    $8, $9, $10,
    $11, $12, $13, $14,
    $15, $16, $17, $18,
    $19, $20, $21, $22,
    $23, $24, $25, $26,
    $27, $28
)`

// InsertRun stores the run header and all its items in one transaction and
// returns the new run id.
func (r *coverageRepository) InsertRun(ctx context.Context, run *domain.Run, items []domain.CoverageItem) (int64, error) {
	var runID int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, insertRunQuery,
			run.Season, run.ExecutedAt, run.RowCount, run.MaterialCount,
			run.DroppedRows, run.ExcludedKeys, run.ZeroYieldRows,
			run.TolerancePct, run.WorkbookPath, run.ExportURL,
		)
		if err := row.Scan(&runID); err != nil {
			return fmt.Errorf("could not insert coverage run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, insertItemQuery)
		if err != nil {
			return fmt.Errorf("could not prepare item insert: %w", err)
		}
		defer stmt.Close()

		for _, it := range items {
			if _, err := stmt.ExecContext(ctx,
				runID, it.Key, it.LocationID, it.Material, it.MaterialName, it.Family, it.Family2,
				it.NominalRatio, it.Yield, it.CoverageTarget,
				it.StockGeneral, it.StockHub, it.StockTransit, it.StockProd,
				it.TotalStock, it.Surplus, it.Shortage, it.DailyRate,
				it.TheoGeneral, it.TheoHub, it.TheoTransit, it.TheoProd,
				it.RealGeneral, it.RealHub, it.RealTransit, it.RealProd,
				it.Season, it.Aggregated,
			); err != nil {
				return fmt.Errorf("could not insert coverage item %s: %w", it.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int64("run_id", runID).Int("items", len(items)).Msg("stored coverage run")
	return runID, nil
}

func (r *coverageRepository) GetRun(ctx context.Context, id int64) (*domain.Run, error) {
	var run domain.Run
	err := r.db.GetContext(ctx, &run, `SELECT * FROM coverage_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("coverage run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load coverage run %d: %w", id, err)
	}
	return &run, nil
}

func (r *coverageRepository) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := []domain.Run{}
	err := r.db.SelectContext(ctx, &runs,
		`SELECT * FROM coverage_runs ORDER BY executed_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list coverage runs: %w", err)
	}
	return runs, nil
}

func (r *coverageRepository) LatestRunID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`SELECT id FROM coverage_runs ORDER BY executed_at DESC, id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no coverage runs stored yet")
	}
	if err != nil {
		return 0, fmt.Errorf("could not resolve latest run: %w", err)
	}
	return id, nil
}

func (r *coverageRepository) GetItems(ctx context.Context, filter domain.CoverageFilter) ([]domain.CoverageItem, error) {
	clauses := []string{"run_id = $1", "aggregated = FALSE"}
	args := []any{filter.RunID}

	if filter.LocationID != "" {
		args = append(args, filter.LocationID)
		clauses = append(clauses, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if filter.Material != "" {
		args = append(args, filter.Material)
		clauses = append(clauses, fmt.Sprintf("material = $%d", len(args)))
	}
	if filter.Family != "" {
		args = append(args, filter.Family)
		clauses = append(clauses, fmt.Sprintf("family = $%d", len(args)))
	}
	if filter.ShortOnly {
		clauses = append(clauses, "shortage > 0")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(
		`SELECT * FROM coverage_items WHERE %s ORDER BY item_key LIMIT $%d OFFSET $%d`,
		strings.Join(clauses, " AND "), len(args)-1, len(args))

	items := []domain.CoverageItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("could not query coverage items: %w", err)
	}
	return items, nil
}

func (r *coverageRepository) GetMaterials(ctx context.Context, runID int64) ([]domain.CoverageItem, error) {
	items := []domain.CoverageItem{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM coverage_items WHERE run_id = $1 AND aggregated = TRUE ORDER BY material`, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query material aggregates: %w", err)
	}
	return items, nil
}
