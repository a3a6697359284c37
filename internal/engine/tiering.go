package engine

import (
	"fmt"
	"math"
	"sort"
)

type stockGroupKey struct {
	locationID string
	storageLoc string
	material   string
}

// SplitTiers computes quantity on hand per snapshot row, groups it by
// (location, storage location, material) and partitions the grouped rows into
// the four tier tables. Rows whose quantity on hand is undefined (missing
// free-use or quality column) are dropped and counted. Rows without a
// material code cannot resolve a composite key and are likewise counted.
//
// The partition is verified: the four tables must be disjoint and their
// union must cover every grouped row exactly once, conserving the grouped
// quantity per key.
func (o Options) SplitTiers(rows []StockRecord) (TierTables, Defects, error) {
	var defects Defects
	if err := o.Validate(); err != nil {
		return TierTables{}, defects, err
	}

	grouped := make(map[stockGroupKey]float64)
	for _, r := range rows {
		if !r.HasFreeUse || !r.HasQualityInsp {
			defects.DroppedStockRows++
			continue
		}
		material := CanonicalMaterial(r.Material)
		if material == "" {
			defects.UnresolvedKeys++
			continue
		}
		gk := stockGroupKey{
			locationID: o.LocationID(r.Center, r.StorageLoc),
			storageLoc: r.StorageLoc,
			material:   material,
		}
		grouped[gk] += r.FreeUse + r.QualityInsp
	}

	var tables TierTables
	var coveredQty, groupedQty float64
	covered := 0
	for gk, qty := range grouped {
		groupedQty += qty
		ts := TierStock{
			LocationID: gk.locationID,
			StorageLoc: gk.storageLoc,
			Material:   gk.material,
			Key:        CompositeKey(gk.locationID, gk.material),
			Quantity:   qty,
		}
		switch gk.storageLoc {
		case o.ProductionCode:
			tables.Production = append(tables.Production, ts)
		case o.TransitCode:
			tables.Transit = append(tables.Transit, ts)
		case o.HubStorageCode:
			tables.Hub = append(tables.Hub, ts)
		default:
			tables.General = append(tables.General, ts)
		}
		covered++
		coveredQty += qty
	}

	total := len(tables.Production) + len(tables.Transit) + len(tables.Hub) + len(tables.General)
	if total != len(grouped) || total != covered {
		return TierTables{}, defects, fmt.Errorf("tier partition is not a disjoint cover: %d grouped rows, %d partitioned", len(grouped), total)
	}
	if math.Abs(coveredQty-groupedQty) > 1e-9 {
		return TierTables{}, defects, fmt.Errorf("tier partition lost quantity: grouped %.4f, partitioned %.4f", groupedQty, coveredQty)
	}

	for _, t := range [][]TierStock{tables.Production, tables.Transit, tables.Hub, tables.General} {
		sortTierStocks(t)
	}

	return tables, defects, nil
}

func sortTierStocks(t []TierStock) {
	sort.Slice(t, func(i, j int) bool {
		if t[i].Key != t[j].Key {
			return t[i].Key < t[j].Key
		}
		return t[i].StorageLoc < t[j].StorageLoc
	})
}

// ValueByLocation sums quantity on hand and its monetary value per location
// from the snapshot's optional valuation columns. Rows without a defined
// quantity are skipped; rows without valuation columns contribute quantity
// only.
func (o Options) ValueByLocation(rows []StockRecord) []LocationValue {
	totals := make(map[string]*LocationValue)
	for _, r := range rows {
		if !r.HasFreeUse || !r.HasQualityInsp {
			continue
		}
		loc := o.LocationID(r.Center, r.StorageLoc)
		lv, ok := totals[loc]
		if !ok {
			lv = &LocationValue{LocationID: loc}
			totals[loc] = lv
		}
		lv.Quantity += r.FreeUse + r.QualityInsp
		if r.HasValues {
			lv.Value += r.FreeUseValue + r.QualityValue
		}
	}

	out := make([]LocationValue, 0, len(totals))
	for _, lv := range totals {
		out = append(out, *lv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out
}
