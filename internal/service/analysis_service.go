// internal/service/analysis_service.go
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/plantops/supply-coverage/internal/cache"
	"github.com/plantops/supply-coverage/internal/config"
	"github.com/plantops/supply-coverage/internal/domain"
	"github.com/plantops/supply-coverage/internal/engine"
	"github.com/plantops/supply-coverage/internal/extract"
	"github.com/plantops/supply-coverage/internal/fleet"
	"github.com/plantops/supply-coverage/internal/forecast"
	"github.com/plantops/supply-coverage/internal/report"
	"github.com/plantops/supply-coverage/internal/repository"
	"github.com/plantops/supply-coverage/internal/storage"
)

// FleetAPI is the slice of the fleet client the service needs.
type FleetAPI interface {
	Events(ctx context.Context, from, to time.Time) ([]fleet.Event, error)
}

// Forecaster is the slice of the forecast client the service needs.
type Forecaster interface {
	Project(ctx context.Context, series []forecast.Point) ([]forecast.Point, error)
}

// AnalysisService runs the full reconciliation pipeline: load extracts,
// query the fleet, compute coverage, render the workbook and publish the
// result.
type AnalysisService struct {
	cfg        *config.Config
	fleetAPI   FleetAPI
	forecaster Forecaster
	store      storage.ObjectStorage
	repo       repository.CoverageRepository
	cache      cache.CoverageCache
}

// NewAnalysisService wires the pipeline. store and repo may be nil; the
// corresponding steps are skipped.
func NewAnalysisService(
	cfg *config.Config,
	fleetAPI FleetAPI,
	forecaster Forecaster,
	store storage.ObjectStorage,
	repo repository.CoverageRepository,
	cch cache.CoverageCache,
) *AnalysisService {
	if cch == nil {
		cch = cache.NewNoopCoverageCache()
	}
	return &AnalysisService{
		cfg:        cfg,
		fleetAPI:   fleetAPI,
		forecaster: forecaster,
		store:      store,
		repo:       repo,
		cache:      cch,
	}
}

// AnalysisRequest is one pipeline invocation.
type AnalysisRequest struct {
	StockPath     string
	LedgerPath    string
	ReferencePath string

	From time.Time
	To   time.Time

	TolerancePct float64
	Persist      bool
}

func (s *AnalysisService) engineOptions() engine.Options {
	return engine.Options{
		HubCenter:      s.cfg.Engine.HubCenter,
		HubCode:        s.cfg.Engine.HubCode,
		ProductionCode: s.cfg.Engine.ProductionCode,
		HubStorageCode: s.cfg.Engine.HubStorageCode,
		TransitCode:    "",
	}
}

// RunAnalysis executes the pipeline end to end and returns the run summary.
// A forecast failure degrades the run; every other collaborator failure
// aborts it.
func (s *AnalysisService) RunAnalysis(ctx context.Context, req AnalysisRequest) (*domain.RunSummary, error) {
	var (
		stockRecords  []engine.StockRecord
		ledgerRecords []engine.LedgerRecord
		ref           *extract.ReferenceData
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		stockRecords, err = extract.LoadStockSnapshot(req.StockPath)
		return err
	})
	g.Go(func() error {
		var err error
		ledgerRecords, err = extract.LoadMovementLedger(req.LedgerPath)
		return err
	})
	g.Go(func() error {
		var err error
		ref, err = extract.LoadReferenceWorkbook(req.ReferencePath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load extracts: %w", err)
	}

	sapIndex := ref.SAPIndex()
	homologateStock(stockRecords, sapIndex)
	homologateLedger(ledgerRecords, sapIndex)

	events := s.loadEvents(ctx, req)

	eng, err := engine.New(s.engineOptions())
	if err != nil {
		return nil, err
	}
	result, err := eng.Run(ctx, engine.Inputs{
		Catalog:         extract.BuildCatalog(ref),
		Ledger:          ledgerRecords,
		Stock:           stockRecords,
		OperationalDays: fleet.OperationalDays(events),
		Season:          ref.Quota.Season,
	})
	if err != nil {
		return nil, err
	}

	result.ExecutedAt = result.ExecutedAt.In(s.location())

	valuation := s.engineOptions().ValueByLocation(stockRecords)
	projection, forecastErr := s.project(ctx, events)

	summary := &domain.RunSummary{
		Season:        ref.Quota.Season,
		ExecutedAt:    result.ExecutedAt,
		RowCount:      len(result.Rows),
		MaterialCount: len(result.Materials),
		ShortageKeys:  countShortages(result.Rows),
		DroppedRows:   result.Defects.DroppedStockRows,
		ExcludedKeys:  result.Defects.ExcludedKeys,
		ZeroYieldRows: result.Defects.ZeroYieldRows,
		ForecastDays:  len(projection),
	}
	if forecastErr != nil {
		summary.ForecastError = forecastErr.Error()
	}

	workbookPath, err := s.writeWorkbook(req, result, valuation, events, projection, ref)
	if err != nil {
		return nil, err
	}
	summary.WorkbookPath = workbookPath

	exportURL, err := s.publishExport(ctx, result)
	if err != nil {
		return nil, err
	}
	summary.ExportURL = exportURL

	if req.Persist && s.repo != nil {
		runID, err := s.persist(ctx, req, result, summary)
		if err != nil {
			return nil, err
		}
		summary.RunID = runID
	}

	log.Info().
		Str("season", summary.Season).
		Int("rows", summary.RowCount).
		Int("shortages", summary.ShortageKeys).
		Msg("coverage analysis complete")
	return summary, nil
}

// location resolves the configured plant timezone. Run timestamps are
// reported in plant local time; an unknown zone falls back to UTC.
func (s *AnalysisService) location() *time.Location {
	loc, err := time.LoadLocation(s.cfg.Engine.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", s.cfg.Engine.Timezone).Msg("unknown timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}

// loadEvents fetches landing events. Fleet failures degrade the run to
// default operational days instead of aborting it.
func (s *AnalysisService) loadEvents(ctx context.Context, req AnalysisRequest) []fleet.Event {
	if s.fleetAPI == nil {
		return nil
	}
	events, err := s.fleetAPI.Events(ctx, req.From, req.To)
	if err != nil {
		log.Warn().Err(err).Msg("fleet query failed, operational days default to one")
		return nil
	}
	return events
}

func (s *AnalysisService) project(ctx context.Context, events []fleet.Event) ([]forecast.Point, error) {
	if s.forecaster == nil || len(events) == 0 {
		return nil, nil
	}
	series := forecast.DailySeries(events)
	projection, err := s.forecaster.Project(ctx, series)
	if err != nil {
		log.Warn().Err(err).Msg("projection failed, continuing without forecast")
		return nil, err
	}
	return projection, nil
}

func (s *AnalysisService) writeWorkbook(
	req AnalysisRequest,
	result *engine.Result,
	valuation []engine.LocationValue,
	events []fleet.Event,
	projection []forecast.Point,
	ref *extract.ReferenceData,
) (string, error) {
	if err := os.MkdirAll(s.cfg.App.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	name := fmt.Sprintf("resultados_%s.xlsx", result.ExecutedAt.Format("20060102_150405"))
	path := filepath.Join(s.cfg.App.OutputDir, name)

	tolerance := req.TolerancePct
	if tolerance == 0 {
		tolerance = s.cfg.App.DefaultTolerancePct
	}
	in := report.Input{
		Result:     *result,
		Valuation:  valuation,
		Events:     events,
		Projection: projection,
		Quota:      ref.Quota,
		Params: report.Parameters{
			TolerancePct:   tolerance,
			HubCenter:      s.cfg.Engine.HubCenter,
			HubCode:        s.cfg.Engine.HubCode,
			ProductionCode: s.cfg.Engine.ProductionCode,
			HubStorageCode: s.cfg.Engine.HubStorageCode,
		},
	}
	if err := report.WriteWorkbook(path, in); err != nil {
		return "", err
	}
	return path, nil
}

func (s *AnalysisService) publishExport(ctx context.Context, result *engine.Result) (string, error) {
	if s.store == nil {
		return "", nil
	}
	data, err := report.FlatCSV(result.Rows, result.ExecutedAt)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("seguimiento_insumos_%s.csv", result.ExecutedAt.Format("20060102_150405"))
	if err := s.store.UploadObject(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

func (s *AnalysisService) persist(ctx context.Context, req AnalysisRequest, result *engine.Result, summary *domain.RunSummary) (int64, error) {
	run := &domain.Run{
		Season:        summary.Season,
		ExecutedAt:    summary.ExecutedAt,
		RowCount:      summary.RowCount,
		MaterialCount: summary.MaterialCount,
		DroppedRows:   summary.DroppedRows,
		ExcludedKeys:  summary.ExcludedKeys,
		ZeroYieldRows: summary.ZeroYieldRows,
		TolerancePct:  req.TolerancePct,
		WorkbookPath:  summary.WorkbookPath,
		ExportURL:     summary.ExportURL,
	}
	items := make([]domain.CoverageItem, 0, len(result.Rows)+len(result.Materials))
	for _, r := range result.Rows {
		items = append(items, toItem(r, false))
	}
	for _, r := range result.Materials {
		items = append(items, toItem(r, true))
	}

	runID, err := s.repo.InsertRun(ctx, run, items)
	if err != nil {
		return 0, err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed after run insert")
	}
	return runID, nil
}

func toItem(r engine.CoverageRow, aggregated bool) domain.CoverageItem {
	return domain.CoverageItem{
		Key:            r.Key,
		LocationID:     r.LocationID,
		Material:       r.Material,
		MaterialName:   r.Name,
		Family:         r.Family,
		Family2:        r.Family2,
		NominalRatio:   r.NominalRatio,
		Yield:          r.Yield,
		CoverageTarget: r.CoverageTarget,
		StockGeneral:   r.Stocks.General,
		StockHub:       r.Stocks.Hub,
		StockTransit:   r.Stocks.Transit,
		StockProd:      r.Stocks.Production,
		TotalStock:     r.TotalStock,
		Surplus:        r.Surplus,
		Shortage:       r.Shortage,
		DailyRate:      r.DailyRate,
		TheoGeneral:    r.Theoretical.General,
		TheoHub:        r.Theoretical.Hub,
		TheoTransit:    r.Theoretical.Transit,
		TheoProd:       r.Theoretical.Production,
		RealGeneral:    r.Real.General,
		RealHub:        r.Real.Hub,
		RealTransit:    r.Real.Transit,
		RealProd:       r.Real.Production,
		Season:         r.Season,
		Aggregated:     aggregated,
	}
}

func countShortages(rows []engine.CoverageRow) int {
	n := 0
	for _, r := range rows {
		if r.Shortage > 0 {
			n++
		}
	}
	return n
}

// homologateStock rewrites SAP material codes to planning material ids.
func homologateStock(rows []engine.StockRecord, index map[string]string) {
	for i := range rows {
		canon := engine.CanonicalMaterial(rows[i].Material)
		if mapped, ok := index[canon]; ok {
			rows[i].Material = mapped
		}
	}
}

func homologateLedger(rows []engine.LedgerRecord, index map[string]string) {
	for i := range rows {
		canon := engine.CanonicalMaterial(rows[i].Material)
		if mapped, ok := index[canon]; ok {
			rows[i].Material = mapped
		}
	}
}
