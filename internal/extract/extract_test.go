package extract

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cellRef, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellRef, &row))
		}
	}
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeCSV(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	return path
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"120", 120, true},
		{"1.234,56", 1234.56, true},
		{"1234,56", 1234.56, true},
		{"0.5", 0.5, true},
		{"30-", -30, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumber(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		assert.InDelta(t, c.want, got, 1e-9, "input %q", c.in)
	}
}

func TestLoadStockSnapshot(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Centro", "Almacén", "Material", "Libre utilización", "Inspecc.de calidad", "Valor libre util.", "Valor en insp.cal."},
			{"PL01", "AL01", "4000123.0", "100", "20", "500", "80"},
			{"PL01", "AL01", "4000124", "", "5", "", "10"},
			{"", "", "", "", "", "", ""},
		},
	})

	records, err := LoadStockSnapshot(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "PL01", records[0].Center)
	assert.Equal(t, "AL01", records[0].StorageLoc)
	assert.Equal(t, "4000123.0", records[0].Material)
	assert.True(t, records[0].HasFreeUse)
	assert.True(t, records[0].HasQualityInsp)
	assert.Equal(t, 100.0, records[0].FreeUse)
	assert.Equal(t, 20.0, records[0].QualityInsp)
	assert.True(t, records[0].HasValues)
	assert.Equal(t, 500.0, records[0].FreeUseValue)

	// missing free-use cell keeps the row but without the presence flag
	assert.False(t, records[1].HasFreeUse)
	assert.True(t, records[1].HasQualityInsp)
}

func TestLoadStockSnapshotMissingColumns(t *testing.T) {
	path := writeCSV(t, [][]string{
		{"Centro", "Material"},
		{"PL01", "4000123"},
	})
	_, err := LoadStockSnapshot(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage")
}

func TestLoadMovementLedger(t *testing.T) {
	path := writeCSV(t, [][]string{
		{"Centro", "Almacén", "Material", "Cantidad"},
		{"PL01", "AL01", "4000123", "-30"},
		{"PL01", "AL01", "4000123", "5"},
		{"PL01", "AL01", "4000124", ""},
	})
	records, err := LoadMovementLedger(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, -30.0, records[0].Quantity)
	assert.Equal(t, 5.0, records[1].Quantity)
}

func TestLoadReferenceWorkbook(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		SheetCapacity: {
			{"id_localidad", "cip", "rendimiento", "cobertura_ideal", "maxima_descarga", "cobertura_meta"},
			{"ATIC", "80", "4", "1", "240", "2"},
		},
		SheetRatios: {
			{"id_localidad", "id_insumo", "ratio_nominal", "familia", "familia_2"},
			{"ATIC", "100.0", "2", "quimicos", "soda"},
			{"ATIC", "200", "1.5", "quimicos", "acidos"},
		},
		SheetMaterials: {
			{"id_sap", "id_insumo", "nombre_insumo", "valor_redondeo"},
			{"4000123.0", "100", "Soda caustica", "25"},
		},
		SheetQuota: {
			{"temporada", "cuota"},
			{"2024-I", "120000"},
		},
	})

	ref, err := LoadReferenceWorkbook(path)
	require.NoError(t, err)

	assert.Equal(t, "2024-I", ref.Quota.Season)
	assert.Equal(t, 120000.0, ref.Quota.Quantity)

	idx := ref.SAPIndex()
	assert.Equal(t, "100", idx["4000123"])

	catalog := BuildCatalog(ref)
	require.Len(t, catalog, 2)
	assert.Equal(t, "ATIC", catalog[0].LocationID)
	assert.Equal(t, "100", catalog[0].Material)
	assert.Equal(t, "Soda caustica", catalog[0].Name)
	assert.Equal(t, 25.0, catalog[0].RoundingValue)
	assert.Equal(t, 4.0, catalog[0].Yield)
	assert.Equal(t, 240.0, catalog[0].MaxUnloadCapacity)
	assert.Equal(t, 2.0, catalog[0].NominalRatio)

	// second material has no master row; capacity still joined
	assert.Equal(t, "200", catalog[1].Material)
	assert.Empty(t, catalog[1].Name)
	assert.Equal(t, 4.0, catalog[1].Yield)
}

func TestBuildCatalogMissingCapacity(t *testing.T) {
	ref := &ReferenceData{
		Ratios: []RatioRow{{LocationID: "NOWHERE", Material: "100", NominalRatio: 1}},
	}
	catalog := BuildCatalog(ref)
	require.Len(t, catalog, 1)
	assert.Zero(t, catalog[0].Yield)
	assert.Equal(t, 1.0, catalog[0].NominalRatio)
}
