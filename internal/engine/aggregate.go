package engine

import "sort"

// AggregateByMaterial rolls the per-key coverage report up to one row per
// material. Additive quantities are summed, reference fields are averaged and
// descriptive fields keep their first non-empty value. The coverage target is
// then recomputed from the averaged reference fields, and the coverage ratios
// are rederived from the summed quantities via the same routine the per-key
// report uses; per-key targets and ratios are never summed or averaged
// directly.
func AggregateByMaterial(rows []CoverageRow) []CoverageRow {
	groups := make(map[string]*CoverageRow)
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, r := range rows {
		agg, ok := groups[r.Material]
		if !ok {
			agg = &CoverageRow{
				Key:      r.Material,
				Material: r.Material,
				Season:   r.Season,
			}
			groups[r.Material] = agg
			order = append(order, r.Material)
		}
		counts[r.Material]++

		// Additive columns.
		agg.Stocks.General += r.Stocks.General
		agg.Stocks.Hub += r.Stocks.Hub
		agg.Stocks.Transit += r.Stocks.Transit
		agg.Stocks.Production += r.Stocks.Production
		agg.TotalStock += r.TotalStock
		agg.Surplus += r.Surplus
		agg.Shortage += r.Shortage
		agg.TotalConsumed += r.TotalConsumed
		agg.DailyRate += r.DailyRate

		// Averaged reference fields, accumulated here and divided below.
		agg.NominalRatio += r.NominalRatio
		agg.Yield += r.Yield
		agg.IdealCoverageDays += r.IdealCoverageDays
		agg.MaxUnloadCapacity += r.MaxUnloadCapacity
		agg.InstalledCapacity += r.InstalledCapacity
		agg.CoverageTargetDays += r.CoverageTargetDays

		// Descriptive columns keep the first non-empty value.
		if agg.Name == "" {
			agg.Name = r.Name
		}
		if agg.Family == "" {
			agg.Family = r.Family
		}
		if agg.Family2 == "" {
			agg.Family2 = r.Family2
		}
		if agg.RoundingValue == 0 {
			agg.RoundingValue = r.RoundingValue
		}
	}

	out := make([]CoverageRow, 0, len(groups))
	for _, material := range order {
		agg := groups[material]
		n := float64(counts[material])
		agg.NominalRatio /= n
		agg.Yield /= n
		agg.IdealCoverageDays /= n
		agg.MaxUnloadCapacity /= n
		agg.InstalledCapacity /= n
		agg.CoverageTargetDays /= n

		// The aggregate target comes from the averaged reference fields,
		// through the same formula the per-key rows use.
		if agg.Yield != 0 {
			agg.CoverageTarget = agg.NominalRatio * agg.MaxUnloadCapacity / agg.Yield * agg.IdealCoverageDays
		}

		computeRatios(agg)
		out = append(out, *agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out
}
