package engine

import "time"

// StockRecord is one raw row of the stock snapshot extract. FreeUse and
// QualityInsp carry the "free use" and "pending quality inspection" quantities
// together with presence flags: quantity on hand is defined only when both
// columns were present on the row.
type StockRecord struct {
	Center      string
	StorageLoc  string
	Material    string
	FreeUse     float64
	QualityInsp float64

	HasFreeUse     bool
	HasQualityInsp bool

	// Optional valuation columns.
	FreeUseValue float64
	QualityValue float64
	HasValues    bool
}

// LedgerRecord is one raw row of the movement ledger extract. Quantity is
// signed: consumptions are negative in the source system.
type LedgerRecord struct {
	Center     string
	StorageLoc string
	Material   string
	Quantity   float64
}

// CatalogRow is one row of the joined reference catalog: nominal consumption
// ratio and descriptive attributes per (location, material), plus the
// location's installed capacity figures.
type CatalogRow struct {
	LocationID string
	Material   string

	Name    string
	Family  string
	Family2 string

	NominalRatio       float64
	InstalledCapacity  float64
	Yield              float64
	IdealCoverageDays  float64
	MaxUnloadCapacity  float64
	CoverageTargetDays float64
	RoundingValue      float64
}

// Tier is a mutually exclusive stock-location category.
type Tier string

const (
	TierProduction Tier = "produccion"
	TierTransit    Tier = "transito"
	TierHub        Tier = "hub"
	TierGeneral    Tier = "general"
)

// TierOrder is the fixed accumulation order: cumulative stock for a tier is
// that tier's quantity plus every tier earlier in this slice. The order is
// part of the contract, independent of which tier a planner reads first.
var TierOrder = []Tier{TierGeneral, TierHub, TierTransit, TierProduction}

// TierValues holds one float per tier.
type TierValues struct {
	General    float64
	Hub        float64
	Transit    float64
	Production float64
}

// Get returns the value for a tier.
func (v TierValues) Get(t Tier) float64 {
	switch t {
	case TierGeneral:
		return v.General
	case TierHub:
		return v.Hub
	case TierTransit:
		return v.Transit
	case TierProduction:
		return v.Production
	}
	return 0
}

// Set stores the value for a tier.
func (v *TierValues) Set(t Tier, val float64) {
	switch t {
	case TierGeneral:
		v.General = val
	case TierHub:
		v.Hub = val
	case TierTransit:
		v.Transit = val
	case TierProduction:
		v.Production = val
	}
}

// Total sums all four tiers.
func (v TierValues) Total() float64 {
	return v.General + v.Hub + v.Transit + v.Production
}

// TierStock is one grouped stock row: quantity on hand summed per
// (location, storage location, material).
type TierStock struct {
	LocationID string
	StorageLoc string
	Material   string
	Key        string
	Quantity   float64
}

// TierTables is the four-way partition of the grouped stock snapshot.
type TierTables struct {
	Production []TierStock
	Transit    []TierStock
	Hub        []TierStock
	General    []TierStock
}

// ConsumptionRecord is the consumption estimate for one composite key.
type ConsumptionRecord struct {
	Key             string
	LocationID      string
	Material        string
	TotalConsumed   float64
	OperationalDays float64
	DailyRate       float64
}

// CoverageRow is one row of the coverage report, either per composite key or,
// after aggregation, per material (LocationID empty, Key equal to Material).
type CoverageRow struct {
	Key        string
	LocationID string
	Material   string

	Name    string
	Family  string
	Family2 string

	NominalRatio       float64
	InstalledCapacity  float64
	Yield              float64
	IdealCoverageDays  float64
	MaxUnloadCapacity  float64
	CoverageTargetDays float64
	RoundingValue      float64

	CoverageTarget float64

	Stocks     TierValues
	TotalStock float64
	Surplus    float64
	Shortage   float64

	TotalConsumed   float64
	OperationalDays float64
	DailyRate       float64

	Cumulative  TierValues
	Theoretical TierValues
	Real        TierValues

	Season string
}

// LocationValue is the stock valuation summary for one location: total
// quantity on hand and its monetary value.
type LocationValue struct {
	LocationID string
	Quantity   float64
	Value      float64
}

// Defects counts the per-row input defects observed during a run. Defective
// rows are excluded and counted, never silently dropped.
type Defects struct {
	DroppedStockRows     int // quantity on hand undefined (missing free-use or quality column)
	UnresolvedKeys       int // rows that could not resolve a composite key
	ExcludedKeys         int // stock/consumption keys with no catalog reference
	DuplicateCatalogKeys int // catalog rows sharing a composite key
	ZeroYieldRows        int // catalog rows where yield is zero
}

// Result is the immutable outcome of one analysis run.
type Result struct {
	Rows      []CoverageRow
	Materials []CoverageRow
	Defects   Defects

	ExecutedAt time.Time
}
