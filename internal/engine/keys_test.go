package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationID_HubComposite(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "TCNO-HUB", opts.LocationID("TCNO", "HUB"))
	assert.Equal(t, "TCNO", opts.LocationID("TCNO", "L003"))
	assert.Equal(t, "ATIC", opts.LocationID("ATIC", "HUB"))
}

func TestLocationID_UnknownCodesPassThrough(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "ZZZZ", opts.LocationID("ZZZZ", "XX99"))
	assert.Equal(t, "", opts.LocationID("", ""))
}

func TestCanonicalMaterial(t *testing.T) {
	cases := []struct {
		raw, want string
	}{
		{"4000123", "4000123"},
		{"4000123.0", "4000123"},
		{"4000123.000", "4000123"},
		{" 4000123 ", "4000123"},
		{"0004123", "0004123"},   // leading zeros preserved
		{"4000123.5", "4000123.5"}, // non-integral stays as-is
		{"AB-77", "AB-77"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanonicalMaterial(c.raw), "raw=%q", c.raw)
	}
}

func TestCompositeKey(t *testing.T) {
	assert.Equal(t, "TCNO-HUB4000123", CompositeKey("TCNO-HUB", "4000123"))
}

func TestOptionsValidate_CollidingTierCodes(t *testing.T) {
	opts := DefaultOptions()
	opts.HubStorageCode = opts.ProductionCode

	assert.Error(t, opts.Validate())
	assert.NoError(t, DefaultOptions().Validate())
}
