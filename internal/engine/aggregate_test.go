package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateByMaterial_SumsAndAverages(t *testing.T) {
	opts := DefaultOptions()
	catalog := []CatalogRow{
		{LocationID: "A", Material: "X", Name: "Soda Ash", Family: "F1", NominalRatio: 2, Yield: 4, MaxUnloadCapacity: 240, IdealCoverageDays: 1},
		{LocationID: "B", Material: "X", NominalRatio: 4, Yield: 4, MaxUnloadCapacity: 240, IdealCoverageDays: 1},
	}
	tiers := TierTables{
		Production: []TierStock{
			tierStock("A", "PI01", "X", 100),
			tierStock("B", "PI01", "X", 60),
		},
		General: []TierStock{tierStock("A", "Z001", "X", 50)},
	}
	consumption := []ConsumptionRecord{
		{Key: "AX", LocationID: "A", Material: "X", TotalConsumed: 300, OperationalDays: 10, DailyRate: 30},
		{Key: "BX", LocationID: "B", Material: "X", TotalConsumed: 100, OperationalDays: 10, DailyRate: 10},
	}

	rows, _ := opts.ComputeCoverage(CoverageInputs{Catalog: catalog, Tiers: tiers, Consumption: consumption})
	require.Len(t, rows, 2)

	agg := AggregateByMaterial(rows)
	require.Len(t, agg, 1)

	a := agg[0]
	assert.Equal(t, "X", a.Material)
	assert.Equal(t, "Soda Ash", a.Name, "first non-empty descriptive value")
	assert.Equal(t, "F1", a.Family)

	// Additive columns summed.
	assert.Equal(t, 160.0, a.Stocks.Production)
	assert.Equal(t, 50.0, a.Stocks.General)
	assert.Equal(t, 210.0, a.TotalStock)
	assert.Equal(t, 400.0, a.TotalConsumed)
	assert.Equal(t, 40.0, a.DailyRate)

	// Reference fields averaged.
	assert.Equal(t, 3.0, a.NominalRatio)
	assert.Equal(t, 4.0, a.Yield)

	// Target recomputed from the averaged fields: 3 * 240 / 4 * 1.
	assert.Equal(t, 180.0, a.CoverageTarget)

	// Ratios rederived from the summed quantities, not averaged:
	// real(production) = 210 / 40, not mean(150/30, 60/10).
	assert.InDelta(t, 210.0/40.0, a.Real.Production, 1e-9)
	assert.InDelta(t, 210.0*1/180.0, a.Theoretical.Production, 1e-9)
}

func TestAggregateByMaterial_TargetFromAveragedFields(t *testing.T) {
	opts := DefaultOptions()
	// Two identical locations: averaging leaves the reference fields
	// unchanged, so the aggregate target must equal the per-key target, not
	// its sum across keys.
	catalog := []CatalogRow{
		catalogRow("A", "X", 2, 4, 240, 1),
		catalogRow("B", "X", 2, 4, 240, 1),
	}
	tiers := TierTables{
		Production: []TierStock{
			tierStock("A", "PI01", "X", 60),
			tierStock("B", "PI01", "X", 60),
		},
	}

	rows, _ := opts.ComputeCoverage(CoverageInputs{Catalog: catalog, Tiers: tiers})
	require.Len(t, rows, 2)
	assert.Equal(t, 120.0, rows[0].CoverageTarget)

	agg := AggregateByMaterial(rows)
	require.Len(t, agg, 1)
	assert.Equal(t, 120.0, agg[0].CoverageTarget)
	assert.InDelta(t, 1.0, agg[0].Theoretical.Production, 1e-9)
}

func TestAggregateByMaterial_ZeroYieldLeavesZeroTarget(t *testing.T) {
	opts := DefaultOptions()
	catalog := []CatalogRow{
		catalogRow("A", "X", 2, 0, 240, 1),
		catalogRow("B", "X", 2, 0, 240, 1),
	}
	tiers := TierTables{Production: []TierStock{tierStock("A", "PI01", "X", 100)}}

	rows, _ := opts.ComputeCoverage(CoverageInputs{Catalog: catalog, Tiers: tiers})
	agg := AggregateByMaterial(rows)
	require.Len(t, agg, 1)
	assert.Zero(t, agg[0].CoverageTarget)
}

func TestAggregateByMaterial_Idempotence(t *testing.T) {
	opts := DefaultOptions()
	catalog := []CatalogRow{
		catalogRow("A", "X", 2, 4, 240, 1),
		catalogRow("A", "Y", 3, 4, 100, 2),
	}
	tiers := TierTables{
		Production: []TierStock{tierStock("A", "PI01", "X", 100)},
		Hub:        []TierStock{tierStock("A", "L003", "Y", 40)},
	}
	consumption := []ConsumptionRecord{
		{Key: "AX", LocationID: "A", Material: "X", TotalConsumed: 60, OperationalDays: 6, DailyRate: 10},
	}

	rows, _ := opts.ComputeCoverage(CoverageInputs{Catalog: catalog, Tiers: tiers, Consumption: consumption})
	once := AggregateByMaterial(rows)
	twice := AggregateByMaterial(once)

	// Every group is already trivial, so aggregating again changes nothing.
	assert.Equal(t, once, twice)
}

func TestAggregateByMaterial_ZeroRatioStaysZeroOnAggregate(t *testing.T) {
	opts := DefaultOptions()
	catalog := []CatalogRow{
		catalogRow("A", "X", 0, 4, 240, 1),
		catalogRow("B", "X", 0, 4, 240, 1),
	}
	tiers := TierTables{Production: []TierStock{tierStock("A", "PI01", "X", 100)}}

	rows, _ := opts.ComputeCoverage(CoverageInputs{Catalog: catalog, Tiers: tiers})
	agg := AggregateByMaterial(rows)
	require.Len(t, agg, 1)

	for _, tier := range TierOrder {
		assert.Zero(t, agg[0].Theoretical.Get(tier))
		assert.Zero(t, agg[0].Real.Get(tier))
	}
}
