package engine

import "sort"

// CoverageInputs are the three joined tables the calculator consumes, all
// keyed by composite key.
type CoverageInputs struct {
	Catalog     []CatalogRow
	Tiers       TierTables
	Consumption []ConsumptionRecord
	Season      string
}

// ComputeCoverage joins the catalog base rows with the four tier tables and
// the consumption estimate, then derives coverage target, surplus/shortage
// and the cumulative coverage ratios per tier.
//
// Join semantics: catalog rows are the base and are never dropped; a base row
// with no stock in a tier gets exactly 0 for that tier. Stock or consumption
// keys absent from the catalog are excluded from the report and counted.
// Duplicate catalog keys are a defect: the first row wins, the rest are
// counted.
func (o Options) ComputeCoverage(in CoverageInputs) ([]CoverageRow, Defects) {
	var defects Defects

	tierQty := map[Tier]map[string]float64{
		TierProduction: sumByKey(in.Tiers.Production),
		TierTransit:    sumByKey(in.Tiers.Transit),
		TierHub:        sumByKey(in.Tiers.Hub),
		TierGeneral:    sumByKey(in.Tiers.General),
	}

	seen := make(map[string]bool, len(in.Catalog))
	rows := make([]CoverageRow, 0, len(in.Catalog))
	for _, c := range in.Catalog {
		material := CanonicalMaterial(c.Material)
		if c.LocationID == "" || material == "" {
			defects.UnresolvedKeys++
			continue
		}
		key := CompositeKey(c.LocationID, material)
		if seen[key] {
			defects.DuplicateCatalogKeys++
			continue
		}
		seen[key] = true

		row := CoverageRow{
			Key:                key,
			LocationID:         c.LocationID,
			Material:           material,
			Name:               c.Name,
			Family:             c.Family,
			Family2:            c.Family2,
			NominalRatio:       c.NominalRatio,
			InstalledCapacity:  c.InstalledCapacity,
			Yield:              c.Yield,
			IdealCoverageDays:  c.IdealCoverageDays,
			MaxUnloadCapacity:  c.MaxUnloadCapacity,
			CoverageTargetDays: c.CoverageTargetDays,
			RoundingValue:      c.RoundingValue,
			Season:             in.Season,
		}

		// Zero yield would mean dividing by zero; the target degrades to
		// zero and the row is flagged instead.
		if c.Yield == 0 {
			defects.ZeroYieldRows++
		} else {
			row.CoverageTarget = c.NominalRatio * c.MaxUnloadCapacity / c.Yield * c.IdealCoverageDays
		}

		// Fill happens after all four joins: true absence of stock yields
		// exactly 0 in every tier column.
		for t, byKey := range tierQty {
			row.Stocks.Set(t, byKey[key])
		}
		row.TotalStock = row.Stocks.Total()
		row.Surplus = max0(row.TotalStock - row.CoverageTarget)
		row.Shortage = max0(row.CoverageTarget - row.TotalStock)

		rows = append(rows, row)
	}

	consumption := make(map[string]ConsumptionRecord, len(in.Consumption))
	for _, c := range in.Consumption {
		consumption[c.Key] = c
	}
	for i := range rows {
		if c, ok := consumption[rows[i].Key]; ok {
			rows[i].TotalConsumed = c.TotalConsumed
			rows[i].OperationalDays = c.OperationalDays
			rows[i].DailyRate = c.DailyRate
		}
		computeRatios(&rows[i])
	}

	// Keys present in stock or consumption but not in the catalog are
	// excluded by the inner join; report how many were lost.
	excluded := make(map[string]bool)
	for _, byKey := range tierQty {
		for key := range byKey {
			if !seen[key] {
				excluded[key] = true
			}
		}
	}
	for key := range consumption {
		if !seen[key] {
			excluded[key] = true
		}
	}
	defects.ExcludedKeys = len(excluded)

	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows, defects
}

// computeRatios derives cumulative stock and the theoretical/real coverage
// columns for one row, walking the tiers in the fixed accumulation order.
// Both the per-key report and the per-material aggregate pass through this
// single routine, so the two views can never diverge in formula.
//
// When the coverage target is exactly 0 the theoretical ratio divides by 1
// instead: a deliberate saturation that keeps the result finite, not a true
// ratio. A zero daily rate yields a real coverage of 0, never an infinity.
func computeRatios(row *CoverageRow) {
	cum := 0.0
	for _, t := range TierOrder {
		cum += row.Stocks.Get(t)
		row.Cumulative.Set(t, cum)

		if row.NominalRatio == 0 {
			row.Theoretical.Set(t, 0)
			row.Real.Set(t, 0)
			continue
		}

		denom := row.CoverageTarget
		if denom == 0 {
			denom = 1
		}
		row.Theoretical.Set(t, cum*row.IdealCoverageDays/denom)

		if row.DailyRate == 0 {
			row.Real.Set(t, 0)
		} else {
			row.Real.Set(t, cum/row.DailyRate)
		}
	}
}

func sumByKey(stocks []TierStock) map[string]float64 {
	byKey := make(map[string]float64, len(stocks))
	for _, s := range stocks {
		byKey[s.Key] += s.Quantity
	}
	return byKey
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
