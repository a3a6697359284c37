// internal/report/workbook.go
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/plantops/supply-coverage/internal/engine"
	"github.com/plantops/supply-coverage/internal/extract"
	"github.com/plantops/supply-coverage/internal/fleet"
	"github.com/plantops/supply-coverage/internal/forecast"
)

// Parameters is the run configuration echoed into the parametros sheet. The
// tolerance is persisted for planners even though no computation consumes it.
type Parameters struct {
	TolerancePct   float64
	HubCenter      string
	HubCode        string
	ProductionCode string
	HubStorageCode string
}

// Input is everything one workbook render needs.
type Input struct {
	Result     engine.Result
	Valuation  []engine.LocationValue
	Events     []fleet.Event
	Projection []forecast.Point
	Quota      extract.QuotaRow
	Params     Parameters
}

const dayLayout = "2006-01-02"

// WriteWorkbook renders the tracking workbook at path.
func WriteWorkbook(path string, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDetail); err != nil {
		return fmt.Errorf("report: failed to name detail sheet: %w", err)
	}

	if err := writeCoverageSheet(f, SheetDetail, in.Result.Rows, in.Result.ExecutedAt); err != nil {
		return err
	}
	if err := writeCoverageSheet(f, SheetMaterials, in.Result.Materials, in.Result.ExecutedAt); err != nil {
		return err
	}
	if err := writeLandingsSheet(f, in.Events); err != nil {
		return err
	}
	if err := writeValuationSheet(f, in.Valuation); err != nil {
		return err
	}
	if err := writeProjectionSheet(f, in.Projection); err != nil {
		return err
	}
	if err := writeQuotaSheet(f, in.Quota); err != nil {
		return err
	}
	if err := writeParamsSheet(f, in.Params, in.Result.ExecutedAt); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: failed to save workbook %s: %w", path, err)
	}
	return nil
}

func ensureSheet(f *excelize.File, name string) error {
	if idx, _ := f.GetSheetIndex(name); idx >= 0 {
		return nil
	}
	_, err := f.NewSheet(name)
	if err != nil {
		return fmt.Errorf("report: failed to create sheet %s: %w", name, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("report: bad cell coordinate on sheet %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("report: failed to write row %d on sheet %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func writeCoverageSheet(f *excelize.File, sheet string, rows []engine.CoverageRow, executedAt time.Time) error {
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}
	out := make([][]any, 0, len(rows)+1)
	header := make([]any, len(DetailColumns))
	for i, c := range DetailColumns {
		header[i] = c
	}
	out = append(out, header)
	for _, r := range rows {
		out = append(out, detailRecord(r, executedAt))
	}
	return writeRows(f, sheet, out)
}

func writeLandingsSheet(f *excelize.File, events []fleet.Event) error {
	if err := ensureSheet(f, SheetLandings); err != nil {
		return err
	}
	out := [][]any{{"id_localidad", "fecha_proceso", "fecha_descarga", "cantidad_descargada"}}
	for _, ev := range events {
		out = append(out, []any{
			ev.LocationID,
			ev.ProcessDate.Format(dayLayout),
			ev.DischargeDate.Format(dayLayout),
			ev.LandedQty,
		})
	}
	return writeRows(f, SheetLandings, out)
}

func writeValuationSheet(f *excelize.File, valuation []engine.LocationValue) error {
	if err := ensureSheet(f, SheetValuation); err != nil {
		return err
	}
	out := [][]any{{"id_localidad", "cantidad", "valor"}}
	for _, v := range valuation {
		out = append(out, []any{v.LocationID, v.Quantity, v.Value})
	}
	return writeRows(f, SheetValuation, out)
}

func writeProjectionSheet(f *excelize.File, projection []forecast.Point) error {
	if err := ensureSheet(f, SheetProjection); err != nil {
		return err
	}
	out := [][]any{{"fecha", "cantidad", "cantidad_minima", "cantidad_maxima", "origen"}}
	for _, p := range projection {
		out = append(out, []any{p.Date.Format(dayLayout), p.Value, p.Lower, p.Upper, p.Source})
	}
	return writeRows(f, SheetProjection, out)
}

func writeQuotaSheet(f *excelize.File, quota extract.QuotaRow) error {
	if err := ensureSheet(f, SheetQuota); err != nil {
		return err
	}
	out := [][]any{
		{"temporada", "cuota"},
		{quota.Season, quota.Quantity},
	}
	return writeRows(f, SheetQuota, out)
}

func writeParamsSheet(f *excelize.File, p Parameters, executedAt time.Time) error {
	if err := ensureSheet(f, SheetParams); err != nil {
		return err
	}
	out := [][]any{
		{"parametro", "valor"},
		{"tolerancia", p.TolerancePct},
		{"centro_hub", p.HubCenter},
		{"almacen_hub", p.HubCode},
		{"almacen_produccion", p.ProductionCode},
		{"almacen_fisico_hub", p.HubStorageCode},
		{"fecha_ejecucion", executedAt.Format(timestampLayout)},
	}
	return writeRows(f, SheetParams, out)
}
