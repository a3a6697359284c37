// internal/report/flat.go
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/plantops/supply-coverage/internal/engine"
)

// FlatCSV renders the detail rows as a CSV document in DetailColumns order,
// suitable for upload to the shared document store.
func FlatCSV(rows []engine.CoverageRow, executedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(DetailColumns); err != nil {
		return nil, fmt.Errorf("report: failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := detailRecord(r, executedAt)
		cells := make([]string, len(record))
		for i, v := range record {
			cells[i] = formatCell(v)
		}
		if err := w.Write(cells); err != nil {
			return nil, fmt.Errorf("report: failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("report: csv flush failed: %w", err)
	}
	return buf.Bytes(), nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// FlatJSON renders the detail rows as a JSON array of column-keyed objects.
func FlatJSON(rows []engine.CoverageRow, executedAt time.Time) ([]byte, error) {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		record := detailRecord(r, executedAt)
		obj := make(map[string]any, len(DetailColumns))
		for i, col := range DetailColumns {
			obj[col] = record[i]
		}
		out = append(out, obj)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("report: failed to encode json export: %w", err)
	}
	return data, nil
}
