package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateConsumption_AbsoluteMagnitude(t *testing.T) {
	opts := DefaultOptions()
	ledger := []LedgerRecord{
		{Center: "ATIC", Material: "100", Quantity: -30},
		{Center: "ATIC", Material: "100", Quantity: -15},
		{Center: "ATIC", Material: "100", Quantity: 5}, // reversal, still magnitude
	}

	records, defects := opts.EstimateConsumption(ledger, map[string]int{"ATIC": 10})
	require.Len(t, records, 1)
	assert.Zero(t, defects.UnresolvedKeys)

	r := records[0]
	assert.Equal(t, "ATIC100", r.Key)
	assert.Equal(t, 50.0, r.TotalConsumed)
	assert.Equal(t, 10.0, r.OperationalDays)
	assert.Equal(t, 5.0, r.DailyRate)
}

func TestEstimateConsumption_MissingDaysDefaultsToOne(t *testing.T) {
	opts := DefaultOptions()
	ledger := []LedgerRecord{
		{Center: "ATIC", Material: "100", Quantity: -40},
	}

	records, _ := opts.EstimateConsumption(ledger, nil)
	require.Len(t, records, 1)

	// total 40, no days for the location: rate is 40/1, never null or Inf.
	assert.Equal(t, 40.0, records[0].TotalConsumed)
	assert.Equal(t, 1.0, records[0].OperationalDays)
	assert.Equal(t, 40.0, records[0].DailyRate)
}

func TestEstimateConsumption_ZeroDaysDefaultsToOne(t *testing.T) {
	opts := DefaultOptions()
	records, _ := opts.EstimateConsumption(
		[]LedgerRecord{{Center: "ATIC", Material: "100", Quantity: -40}},
		map[string]int{"ATIC": 0},
	)
	require.Len(t, records, 1)
	assert.Equal(t, 40.0, records[0].DailyRate)
}

func TestEstimateConsumption_KeyedByLocationAndMaterial(t *testing.T) {
	opts := DefaultOptions()
	ledger := []LedgerRecord{
		{Center: "ATIC", Material: "100", Quantity: -10},
		{Center: "ATIC", Material: "200.0", Quantity: -20},
		{Center: "CHIM", Material: "100", Quantity: -30},
		{Center: "ATIC", Material: "", Quantity: -99},
	}

	records, defects := opts.EstimateConsumption(ledger, map[string]int{"ATIC": 2, "CHIM": 3})
	require.Len(t, records, 3)
	assert.Equal(t, 1, defects.UnresolvedKeys)

	byKey := make(map[string]ConsumptionRecord)
	for _, r := range records {
		byKey[r.Key] = r
	}
	assert.Equal(t, 5.0, byKey["ATIC100"].DailyRate)
	assert.Equal(t, 10.0, byKey["ATIC200"].DailyRate) // material canonicalized from "200.0"
	assert.Equal(t, 10.0, byKey["CHIM100"].DailyRate)
}
