// internal/extract/catalog.go
package extract

import (
	"fmt"
	"sort"

	"github.com/plantops/supply-coverage/internal/engine"
)

// Sheet names of the reference workbook.
const (
	SheetCapacity  = "db_capacidad_instalada"
	SheetRatios    = "db_ratios_planta_insumo"
	SheetMaterials = "db_insumos"
	SheetQuota     = "db_cuota"
)

// CapacityRow is one location of the installed-capacity sheet.
type CapacityRow struct {
	LocationID         string
	InstalledCapacity  float64
	Yield              float64
	IdealCoverageDays  float64
	MaxUnloadCapacity  float64
	CoverageTargetDays float64
}

// RatioRow is one (location, material) nominal consumption ratio.
type RatioRow struct {
	LocationID   string
	Material     string
	NominalRatio float64
	Family       string
	Family2      string
}

// MaterialRow is one material master row, including the ERP homologation
// from the SAP code to the planning material id.
type MaterialRow struct {
	SAPID         string
	Material      string
	Name          string
	RoundingValue float64
}

// QuotaRow is the season quota sheet contents.
type QuotaRow struct {
	Season   string
	Quantity float64
}

// ReferenceData is the parsed reference workbook.
type ReferenceData struct {
	Capacity  []CapacityRow
	Ratios    []RatioRow
	Materials []MaterialRow
	Quota     QuotaRow
}

var capacityAliases = map[string][]string{
	"location": {"id_localidad"},
	"cip":      {"cip", "capacidad_instalada"},
	"yield":    {"rendimiento"},
	"ideal":    {"cobertura_ideal"},
	"unload":   {"maxima_descarga"},
	"target":   {"cobertura_meta"},
}

var ratioAliases = map[string][]string{
	"location": {"id_localidad"},
	"material": {"id_insumo"},
	"ratio":    {"ratio_nominal"},
	"family":   {"familia"},
	"family2":  {"familia_2"},
}

var materialAliases = map[string][]string{
	"sap":      {"id_sap"},
	"material": {"id_insumo"},
	"name":     {"nombre_insumo"},
	"rounding": {"valor_redondeo"},
}

var quotaAliases = map[string][]string{
	"season":   {"temporada"},
	"quantity": {"cuota"},
}

// LoadReferenceWorkbook reads the four reference sheets of the master
// workbook. The quota sheet is optional.
func LoadReferenceWorkbook(path string) (*ReferenceData, error) {
	ref := &ReferenceData{}

	capRows, err := readSheet(path, SheetCapacity)
	if err != nil {
		return nil, err
	}
	if ref.Capacity, err = parseCapacity(capRows); err != nil {
		return nil, fmt.Errorf("sheet %s in %s: %w", SheetCapacity, path, err)
	}

	ratioRows, err := readSheet(path, SheetRatios)
	if err != nil {
		return nil, err
	}
	if ref.Ratios, err = parseRatios(ratioRows); err != nil {
		return nil, fmt.Errorf("sheet %s in %s: %w", SheetRatios, path, err)
	}

	matRows, err := readSheet(path, SheetMaterials)
	if err != nil {
		return nil, err
	}
	if ref.Materials, err = parseMaterials(matRows); err != nil {
		return nil, fmt.Errorf("sheet %s in %s: %w", SheetMaterials, path, err)
	}

	if quotaRows, err := readSheet(path, SheetQuota); err == nil {
		ref.Quota = parseQuota(quotaRows)
	}

	return ref, nil
}

func parseCapacity(rows [][]string) ([]CapacityRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}
	pos := headerIndex(rows[0], capacityAliases)
	if err := requireColumns(pos, "location", "yield", "ideal", "unload"); err != nil {
		return nil, err
	}
	out := make([]CapacityRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		r := CapacityRow{LocationID: cell(row, pos["location"])}
		r.InstalledCapacity, _ = parseNumber(cell(row, pos["cip"]))
		r.Yield, _ = parseNumber(cell(row, pos["yield"]))
		r.IdealCoverageDays, _ = parseNumber(cell(row, pos["ideal"]))
		r.MaxUnloadCapacity, _ = parseNumber(cell(row, pos["unload"]))
		r.CoverageTargetDays, _ = parseNumber(cell(row, pos["target"]))
		out = append(out, r)
	}
	return out, nil
}

func parseRatios(rows [][]string) ([]RatioRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}
	pos := headerIndex(rows[0], ratioAliases)
	if err := requireColumns(pos, "location", "material", "ratio"); err != nil {
		return nil, err
	}
	out := make([]RatioRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		r := RatioRow{
			LocationID: cell(row, pos["location"]),
			Material:   engine.CanonicalMaterial(cell(row, pos["material"])),
			Family:     cell(row, pos["family"]),
			Family2:    cell(row, pos["family2"]),
		}
		r.NominalRatio, _ = parseNumber(cell(row, pos["ratio"]))
		out = append(out, r)
	}
	return out, nil
}

func parseMaterials(rows [][]string) ([]MaterialRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}
	pos := headerIndex(rows[0], materialAliases)
	if err := requireColumns(pos, "sap", "material"); err != nil {
		return nil, err
	}
	out := make([]MaterialRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		r := MaterialRow{
			SAPID:    engine.CanonicalMaterial(cell(row, pos["sap"])),
			Material: engine.CanonicalMaterial(cell(row, pos["material"])),
			Name:     cell(row, pos["name"]),
		}
		r.RoundingValue, _ = parseNumber(cell(row, pos["rounding"]))
		out = append(out, r)
	}
	return out, nil
}

func parseQuota(rows [][]string) QuotaRow {
	if len(rows) < 2 {
		return QuotaRow{}
	}
	pos := headerIndex(rows[0], quotaAliases)
	q := QuotaRow{}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		q.Season = cell(row, pos["season"])
		q.Quantity, _ = parseNumber(cell(row, pos["quantity"]))
		break
	}
	return q
}

// SAPIndex returns the ERP homologation map from SAP material codes to
// planning material ids.
func (r *ReferenceData) SAPIndex() map[string]string {
	idx := make(map[string]string, len(r.Materials))
	for _, m := range r.Materials {
		if m.SAPID != "" && m.Material != "" {
			idx[m.SAPID] = m.Material
		}
	}
	return idx
}

// BuildCatalog joins the ratio sheet with installed capacity per location and
// material master attributes per material. Ratio rows keep their place even
// when the location has no capacity row; the zero yield is surfaced as a
// defect downstream rather than dropped here.
func BuildCatalog(ref *ReferenceData) []engine.CatalogRow {
	capByLoc := make(map[string]CapacityRow, len(ref.Capacity))
	for _, c := range ref.Capacity {
		if _, dup := capByLoc[c.LocationID]; !dup {
			capByLoc[c.LocationID] = c
		}
	}
	matByID := make(map[string]MaterialRow, len(ref.Materials))
	for _, m := range ref.Materials {
		if _, dup := matByID[m.Material]; !dup {
			matByID[m.Material] = m
		}
	}

	out := make([]engine.CatalogRow, 0, len(ref.Ratios))
	for _, r := range ref.Ratios {
		row := engine.CatalogRow{
			LocationID:   r.LocationID,
			Material:     r.Material,
			Family:       r.Family,
			Family2:      r.Family2,
			NominalRatio: r.NominalRatio,
		}
		if c, ok := capByLoc[r.LocationID]; ok {
			row.InstalledCapacity = c.InstalledCapacity
			row.Yield = c.Yield
			row.IdealCoverageDays = c.IdealCoverageDays
			row.MaxUnloadCapacity = c.MaxUnloadCapacity
			row.CoverageTargetDays = c.CoverageTargetDays
		}
		if m, ok := matByID[r.Material]; ok {
			row.Name = m.Name
			row.RoundingValue = m.RoundingValue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationID != out[j].LocationID {
			return out[i].LocationID < out[j].LocationID
		}
		return out[i].Material < out[j].Material
	})
	return out
}
