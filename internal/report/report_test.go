package report

import (
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/plantops/supply-coverage/internal/engine"
	"github.com/plantops/supply-coverage/internal/extract"
	"github.com/plantops/supply-coverage/internal/fleet"
	"github.com/plantops/supply-coverage/internal/forecast"
)

var executedAt = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func sampleRow() engine.CoverageRow {
	return engine.CoverageRow{
		Key:            "ATIC100",
		LocationID:     "ATIC",
		Material:       "100",
		Name:           "Soda caustica",
		Family:         "quimicos",
		NominalRatio:   2,
		Yield:          4,
		CoverageTarget: 120,
		Stocks:         engine.TierValues{General: 50, Production: 100},
		TotalStock:     150,
		Surplus:        30,
		DailyRate:      30,
		Season:         "2024-I",
	}
}

func TestDetailRecordColumnAlignment(t *testing.T) {
	rec := detailRecord(sampleRow(), executedAt)
	require.Len(t, rec, len(DetailColumns))

	byCol := map[string]any{}
	for i, col := range DetailColumns {
		byCol[col] = rec[i]
	}
	assert.Equal(t, "ATIC", byCol["id_localidad"])
	assert.Equal(t, "100", byCol["id_insumo"])
	assert.Equal(t, "ATIC100", byCol["id_localidad_insumo"])
	assert.Equal(t, 120.0, byCol["stock_cobertura_ideal"])
	assert.Equal(t, 50.0, byCol["stock_libre_mas_calidad_general"])
	assert.Equal(t, 100.0, byCol["stock_libre_mas_calidad_produccion"])
	assert.Equal(t, 150.0, byCol["stock_libre_mas_calidad"])
	assert.Equal(t, 30.0, byCol["excedentes"])
	assert.Equal(t, "2024-I", byCol["temporada"])
	assert.Equal(t, "2024-06-15 10:30:00", byCol["fecha_ejecucion"])
}

// The column order is a wire contract; this pins it.
func TestDetailColumnOrder(t *testing.T) {
	require.Len(t, DetailColumns, 34)
	assert.Equal(t, "id_localidad", DetailColumns[0])
	assert.Equal(t, "stock_cobertura_ideal", DetailColumns[11])
	assert.Equal(t, []string{
		"stock_libre_mas_calidad_produccion",
		"stock_libre_mas_calidad_transito",
		"stock_libre_mas_calidad_hub",
		"stock_libre_mas_calidad_general",
	}, DetailColumns[12:16])
	assert.Equal(t, []string{
		"cobertura_teorica_con_stock_general",
		"cobertura_real_general",
		"cobertura_teorica_con_stock_hub",
		"cobertura_real_hub",
		"cobertura_teorica_con_stock_transito",
		"cobertura_real_transito",
		"cobertura_teorica_con_stock_produccion",
		"cobertura_real_produccion",
	}, DetailColumns[22:30])
	assert.Equal(t, "fecha_ejecucion", DetailColumns[len(DetailColumns)-1])
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultados.xlsx")
	in := Input{
		Result: engine.Result{
			Rows:       []engine.CoverageRow{sampleRow()},
			Materials:  []engine.CoverageRow{{Key: "100", Material: "100", TotalStock: 150}},
			ExecutedAt: executedAt,
		},
		Valuation: []engine.LocationValue{{LocationID: "ATIC", Quantity: 150, Value: 580}},
		Events: []fleet.Event{{
			LocationID:    "ATIC",
			ProcessDate:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			DischargeDate: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
			LandedQty:     850.5,
		}},
		Projection: []forecast.Point{{Date: time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), Value: 120, Lower: 80, Upper: 160, Source: forecast.SourceForecast}},
		Quota:      extract.QuotaRow{Season: "2024-I", Quantity: 120000},
		Params:     Parameters{TolerancePct: 10, HubCenter: "TCNO", HubCode: "HUB", ProductionCode: "PI01", HubStorageCode: "L003"},
	}
	require.NoError(t, WriteWorkbook(path, in))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{
		SheetDetail, SheetMaterials, SheetLandings,
		SheetValuation, SheetProjection, SheetQuota, SheetParams,
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetDetail)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, DetailColumns, rows[0])
	assert.Equal(t, "ATIC", rows[1][0])

	projection, err := f.GetRows(SheetProjection)
	require.NoError(t, err)
	require.Len(t, projection, 2)
	assert.Equal(t, []string{"fecha", "cantidad", "cantidad_minima", "cantidad_maxima", "origen"}, projection[0])
	assert.Equal(t, []string{"2024-06-16", "120", "80", "160", "forecast"}, projection[1])

	landings, err := f.GetRows(SheetLandings)
	require.NoError(t, err)
	require.Len(t, landings, 2)
	assert.Equal(t, "2024-06-03", landings[1][1])

	params, err := f.GetRows(SheetParams)
	require.NoError(t, err)
	byName := map[string]string{}
	for _, row := range params[1:] {
		byName[row[0]] = row[1]
	}
	assert.Equal(t, "10", byName["tolerancia"])
	assert.Equal(t, "TCNO", byName["centro_hub"])
}

func TestFlatCSV(t *testing.T) {
	data, err := FlatCSV([]engine.CoverageRow{sampleRow()}, executedAt)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, DetailColumns, records[0])
	assert.Equal(t, "ATIC100", records[1][2])
	assert.Equal(t, "150", records[1][16])
}

func TestFlatJSON(t *testing.T) {
	data, err := FlatJSON([]engine.CoverageRow{sampleRow()}, executedAt)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id_localidad_insumo":"ATIC100"`)
	assert.Contains(t, string(data), `"temporada":"2024-I"`)
}
