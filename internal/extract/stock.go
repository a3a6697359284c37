// internal/extract/stock.go
package extract

import (
	"fmt"

	"github.com/plantops/supply-coverage/internal/engine"
)

var stockAliases = map[string][]string{
	"center":   {"centro", "center", "plant", "ce."},
	"storage":  {"almacén", "almacen", "storage location", "stor. loc.", "almacén.1"},
	"material": {"material"},
	"free":     {"libre utilización", "libre utilizacion", "unrestricted", "unrestricted use"},
	"quality":  {"inspecc.de calidad", "inspecc. de calidad", "in quality insp.", "quality inspection"},
	"free_val": {"valor libre util.", "valor libre util", "value unrestricted"},
	"qual_val": {"valor en insp.cal.", "valor en insp.cal", "value in qualinsp."},
}

// LoadStockSnapshot reads a stock snapshot extract. Quantity presence is
// tracked per row: a record only counts as having quantity on hand when both
// the free-use and quality-inspection cells were populated. Valuation columns
// are optional and carried through when present.
func LoadStockSnapshot(path string) ([]engine.StockRecord, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("stock snapshot %s is empty", path)
	}

	pos := headerIndex(rows[0], stockAliases)
	if err := requireColumns(pos, "center", "storage", "material"); err != nil {
		return nil, fmt.Errorf("stock snapshot %s: %w", path, err)
	}
	hasValueCols := pos["free_val"] != -1 && pos["qual_val"] != -1

	records := make([]engine.StockRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := engine.StockRecord{
			Center:     cell(row, pos["center"]),
			StorageLoc: cell(row, pos["storage"]),
			Material:   cell(row, pos["material"]),
		}
		rec.FreeUse, rec.HasFreeUse = parseNumber(cell(row, pos["free"]))
		rec.QualityInsp, rec.HasQualityInsp = parseNumber(cell(row, pos["quality"]))
		if hasValueCols {
			fv, okF := parseNumber(cell(row, pos["free_val"]))
			qv, okQ := parseNumber(cell(row, pos["qual_val"]))
			if okF || okQ {
				rec.FreeUseValue = fv
				rec.QualityValue = qv
				rec.HasValues = true
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
