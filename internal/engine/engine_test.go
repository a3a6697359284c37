package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInputs() Inputs {
	return Inputs{
		Catalog: []CatalogRow{catalogRow("ATIC", "100", 2, 4, 240, 1)},
		Ledger: []LedgerRecord{
			{Center: "ATIC", Material: "100", Quantity: -300},
		},
		Stock: []StockRecord{
			stockRow("ATIC", "PI01", "100", 60, 40),
			stockRow("ATIC", "Z001", "100", 50, 0),
		},
		OperationalDays: map[string]int{"ATIC": 10},
		Season:          "2024-I",
	}
}

func TestEngineRun_EndToEnd(t *testing.T) {
	e, err := New(DefaultOptions())
	require.NoError(t, err)

	res, err := e.Run(context.Background(), testInputs())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Len(t, res.Materials, 1)

	r := res.Rows[0]
	assert.Equal(t, "ATIC100", r.Key)
	assert.Equal(t, 150.0, r.TotalStock)
	assert.Equal(t, 120.0, r.CoverageTarget)
	assert.Equal(t, 30.0, r.Surplus)
	assert.InDelta(t, 5.0, r.Real.Production, 1e-9)
	assert.Equal(t, "2024-I", r.Season)
	assert.False(t, res.ExecutedAt.IsZero())
}

func TestEngineRun_MissingTableIsFatal(t *testing.T) {
	e, err := New(DefaultOptions())
	require.NoError(t, err)

	for _, tc := range []struct {
		name   string
		mutate func(*Inputs)
	}{
		{"catalog", func(in *Inputs) { in.Catalog = nil }},
		{"ledger", func(in *Inputs) { in.Ledger = nil }},
		{"stock", func(in *Inputs) { in.Stock = nil }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			in := testInputs()
			tc.mutate(&in)

			_, err := e.Run(context.Background(), in)
			var missing *MissingInputError
			require.Error(t, err)
			assert.True(t, errors.As(err, &missing))
		})
	}
}

func TestEngineRun_PartialDefectsDoNotAbort(t *testing.T) {
	e, err := New(DefaultOptions())
	require.NoError(t, err)

	in := testInputs()
	in.Stock = append(in.Stock,
		StockRecord{Center: "ATIC", StorageLoc: "PI01", Material: "100", FreeUse: 5, HasFreeUse: true},
		stockRow("ATIC", "PI01", "not-in-catalog", 10, 0),
	)

	res, err := e.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Defects.DroppedStockRows)
	assert.Equal(t, 1, res.Defects.ExcludedKeys)
	require.Len(t, res.Rows, 1)
}

func TestNew_RejectsCollidingCodes(t *testing.T) {
	opts := DefaultOptions()
	opts.HubStorageCode = opts.TransitCode

	_, err := New(opts)
	assert.Error(t, err)
}
