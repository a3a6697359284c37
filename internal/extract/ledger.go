// internal/extract/ledger.go
package extract

import (
	"fmt"

	"github.com/plantops/supply-coverage/internal/engine"
)

var ledgerAliases = map[string][]string{
	"center":   {"centro", "center", "plant", "ce."},
	"storage":  {"almacén", "almacen", "storage location", "stor. loc."},
	"material": {"material"},
	"quantity": {"cantidad", "quantity", "qty", "ctd.en um entrada"},
}

// LoadMovementLedger reads a movement ledger extract. Quantity is kept
// signed; rows whose quantity cell is empty or not numeric are skipped.
func LoadMovementLedger(path string) ([]engine.LedgerRecord, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("movement ledger %s is empty", path)
	}

	pos := headerIndex(rows[0], ledgerAliases)
	if err := requireColumns(pos, "center", "material", "quantity"); err != nil {
		return nil, fmt.Errorf("movement ledger %s: %w", path, err)
	}

	records := make([]engine.LedgerRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		qty, ok := parseNumber(cell(row, pos["quantity"]))
		if !ok {
			continue
		}
		records = append(records, engine.LedgerRecord{
			Center:     cell(row, pos["center"]),
			StorageLoc: cell(row, pos["storage"]),
			Material:   cell(row, pos["material"]),
			Quantity:   qty,
		})
	}
	return records, nil
}
