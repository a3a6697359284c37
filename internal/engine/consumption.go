package engine

import (
	"math"
	"sort"
)

// EstimateConsumption aggregates the movement ledger into total consumed
// quantity per composite key and derives a daily consumption rate using the
// count of operationally active days per location.
//
// Ledger quantities are signed; consumption totals are taken as absolute
// magnitude. Operational days default to 1 when missing or non-positive, so
// the rate is never infinite or undefined. Rows without a material code are
// dropped and counted.
func (o Options) EstimateConsumption(ledger []LedgerRecord, operationalDays map[string]int) ([]ConsumptionRecord, Defects) {
	var defects Defects

	type entry struct {
		locationID string
		material   string
		total      float64
	}
	totals := make(map[string]*entry)
	for _, r := range ledger {
		material := CanonicalMaterial(r.Material)
		if material == "" {
			defects.UnresolvedKeys++
			continue
		}
		locationID := o.LocationID(r.Center, r.StorageLoc)
		key := CompositeKey(locationID, material)
		e, ok := totals[key]
		if !ok {
			e = &entry{locationID: locationID, material: material}
			totals[key] = e
		}
		e.total += math.Abs(r.Quantity)
	}

	out := make([]ConsumptionRecord, 0, len(totals))
	for key, e := range totals {
		days := 1
		if d, ok := operationalDays[e.locationID]; ok && d > 0 {
			days = d
		}
		total := e.total
		out = append(out, ConsumptionRecord{
			Key:             key,
			LocationID:      e.locationID,
			Material:        e.material,
			TotalConsumed:   total,
			OperationalDays: float64(days),
			DailyRate:       total / float64(days),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, defects
}
