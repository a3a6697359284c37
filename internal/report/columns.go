// internal/report/columns.go

// Package report renders the analysis result as the tracking workbook and as
// a flat export. Column names and sheet names are the wire contract consumed
// by planning spreadsheets downstream; they stay in Spanish and in fixed
// order.
package report

import (
	"time"

	"github.com/plantops/supply-coverage/internal/engine"
)

// Sheet names of the tracking workbook.
const (
	SheetDetail     = "seguimiento_insumos"
	SheetMaterials  = "seguimiento_por_insumo"
	SheetLandings   = "seguimiento_pesca"
	SheetValuation  = "valorizado_centros"
	SheetProjection = "proyeccion_pesca"
	SheetQuota      = "cuota"
	SheetParams     = "parametros"
)

// DetailColumns is the fixed column order of the detail and per-material
// sheets and of the flat export.
var DetailColumns = []string{
	"id_localidad",
	"id_insumo",
	"id_localidad_insumo",
	"ratio_nominal",
	"familia",
	"familia_2",
	"cip",
	"rendimiento",
	"cobertura_ideal",
	"maxima_descarga",
	"cobertura_meta",
	"stock_cobertura_ideal",
	"stock_libre_mas_calidad_produccion",
	"stock_libre_mas_calidad_transito",
	"stock_libre_mas_calidad_hub",
	"stock_libre_mas_calidad_general",
	"stock_libre_mas_calidad",
	"excedentes",
	"faltantes",
	"consumo_diario",
	"cantidad",
	"dias_de_pesca",
	"cobertura_teorica_con_stock_general",
	"cobertura_real_general",
	"cobertura_teorica_con_stock_hub",
	"cobertura_real_hub",
	"cobertura_teorica_con_stock_transito",
	"cobertura_real_transito",
	"cobertura_teorica_con_stock_produccion",
	"cobertura_real_produccion",
	"nombre_insumo",
	"valor_redondeo",
	"temporada",
	"fecha_ejecucion",
}

const timestampLayout = "2006-01-02 15:04:05"

// detailRecord flattens one coverage row in DetailColumns order.
func detailRecord(r engine.CoverageRow, executedAt time.Time) []any {
	rec := []any{
		r.LocationID,
		r.Material,
		r.Key,
		r.NominalRatio,
		r.Family,
		r.Family2,
		r.InstalledCapacity,
		r.Yield,
		r.IdealCoverageDays,
		r.MaxUnloadCapacity,
		r.CoverageTargetDays,
		r.CoverageTarget,
		r.Stocks.Production,
		r.Stocks.Transit,
		r.Stocks.Hub,
		r.Stocks.General,
		r.TotalStock,
		r.Surplus,
		r.Shortage,
		r.DailyRate,
		r.TotalConsumed,
		r.OperationalDays,
	}
	for _, tier := range engine.TierOrder {
		rec = append(rec, r.Theoretical.Get(tier), r.Real.Get(tier))
	}
	rec = append(rec,
		r.Name,
		r.RoundingValue,
		r.Season,
		executedAt.Format(timestampLayout),
	)
	return rec
}
