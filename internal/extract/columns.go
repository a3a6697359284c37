// internal/extract/columns.go

// Package extract loads the SAP stock, movement and reference extracts from
// xlsx or csv files into engine input records. Headers are matched by
// normalized name so both Spanish SAP exports and English re-exports load
// without configuration.
package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// normalizeHeader lowers, trims and collapses a header cell so alias lookup
// is insensitive to casing and stray whitespace.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), " ")
}

// headerIndex maps each alias group to its column position in the header row.
// Returns -1 for groups with no matching column.
func headerIndex(header []string, aliases map[string][]string) map[string]int {
	pos := make(map[string]int, len(aliases))
	for name := range aliases {
		pos[name] = -1
	}
	for i, cell := range header {
		norm := normalizeHeader(cell)
		for name, group := range aliases {
			if pos[name] != -1 {
				continue
			}
			for _, alias := range group {
				if norm == alias {
					pos[name] = i
					break
				}
			}
		}
	}
	return pos
}

func requireColumns(pos map[string]int, names ...string) error {
	var missing []string
	for _, n := range names {
		if pos[n] == -1 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber parses a numeric cell tolerating SAP export formats: thousands
// separators, comma decimals and trailing minus signs. The second return is
// false when the cell is empty or not numeric.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSuffix(s, "-")
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			// "1.234,56": dot thousands, comma decimal
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// readTable loads an xlsx (first sheet) or csv file as raw string rows.
func readTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readSheet(path, "")
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type %s", filepath.Ext(path))
	}
}

// readSheet loads one sheet of an xlsx file. An empty sheet name selects the
// first sheet.
func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx file %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s from %s: %w", sheet, path, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file %s: %w", path, err)
	}
	return rows, nil
}
