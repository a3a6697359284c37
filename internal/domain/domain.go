// internal/domain/domain.go
package domain

import "time"

// Run is the stored metadata of one reconciliation execution.
type Run struct {
	ID            int64     `db:"id" json:"id"`
	Season        string    `db:"season" json:"season"`
	ExecutedAt    time.Time `db:"executed_at" json:"executed_at"`
	RowCount      int       `db:"row_count" json:"row_count"`
	MaterialCount int       `db:"material_count" json:"material_count"`
	DroppedRows   int       `db:"dropped_rows" json:"dropped_rows"`
	ExcludedKeys  int       `db:"excluded_keys" json:"excluded_keys"`
	ZeroYieldRows int       `db:"zero_yield_rows" json:"zero_yield_rows"`
	TolerancePct  float64   `db:"tolerance_pct" json:"tolerance_pct"`
	WorkbookPath  string    `db:"workbook_path" json:"workbook_path"`
	ExportURL     string    `db:"export_url" json:"export_url"`
}

// CoverageItem is one persisted coverage row, either per location-material
// pair or aggregated per material (location_id empty).
type CoverageItem struct {
	ID             int64   `db:"id" json:"-"`
	RunID          int64   `db:"run_id" json:"run_id"`
	Key            string  `db:"item_key" json:"key"`
	LocationID     string  `db:"location_id" json:"location_id"`
	Material       string  `db:"material" json:"material"`
	MaterialName   string  `db:"material_name" json:"material_name"`
	Family         string  `db:"family" json:"family"`
	Family2        string  `db:"family_2" json:"family_2"`
	NominalRatio   float64 `db:"nominal_ratio" json:"nominal_ratio"`
	Yield          float64 `db:"yield" json:"yield"`
	CoverageTarget float64 `db:"coverage_target" json:"coverage_target"`
	StockGeneral   float64 `db:"stock_general" json:"stock_general"`
	StockHub       float64 `db:"stock_hub" json:"stock_hub"`
	StockTransit   float64 `db:"stock_transit" json:"stock_transit"`
	StockProd      float64 `db:"stock_production" json:"stock_production"`
	TotalStock     float64 `db:"total_stock" json:"total_stock"`
	Surplus        float64 `db:"surplus" json:"surplus"`
	Shortage       float64 `db:"shortage" json:"shortage"`
	DailyRate      float64 `db:"daily_rate" json:"daily_rate"`
	TheoGeneral    float64 `db:"theo_general" json:"theoretical_general"`
	TheoHub        float64 `db:"theo_hub" json:"theoretical_hub"`
	TheoTransit    float64 `db:"theo_transit" json:"theoretical_transit"`
	TheoProd       float64 `db:"theo_production" json:"theoretical_production"`
	RealGeneral    float64 `db:"real_general" json:"real_general"`
	RealHub        float64 `db:"real_hub" json:"real_hub"`
	RealTransit    float64 `db:"real_transit" json:"real_transit"`
	RealProd       float64 `db:"real_production" json:"real_production"`
	Season         string  `db:"season" json:"season"`
	Aggregated     bool    `db:"aggregated" json:"-"`
}

// CoverageFilter narrows repository and cache lookups.
type CoverageFilter struct {
	RunID      int64  `form:"run_id" json:"run_id"`
	LocationID string `form:"location_id" json:"location_id"`
	Material   string `form:"material" json:"material"`
	Family     string `form:"family" json:"family"`
	ShortOnly  bool   `form:"short_only" json:"short_only"`
	Limit      int    `form:"limit" json:"limit"`
	Offset     int    `form:"offset" json:"offset"`
}

// RunSummary is the API-facing result of a full analysis pass.
type RunSummary struct {
	RunID         int64     `json:"run_id,omitempty"`
	Season        string    `json:"season"`
	ExecutedAt    time.Time `json:"executed_at"`
	RowCount      int       `json:"row_count"`
	MaterialCount int       `json:"material_count"`
	ShortageKeys  int       `json:"shortage_keys"`
	DroppedRows   int       `json:"dropped_rows"`
	ExcludedKeys  int       `json:"excluded_keys"`
	ZeroYieldRows int       `json:"zero_yield_rows"`
	ForecastDays  int       `json:"forecast_days"`
	ForecastError string    `json:"forecast_error,omitempty"`
	WorkbookPath  string    `json:"workbook_path"`
	ExportURL     string    `json:"export_url,omitempty"`
}
