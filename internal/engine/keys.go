package engine

import (
	"fmt"
	"strings"
)

// Options carries the designated storage-location codes that drive key
// generation and tier partitioning.
type Options struct {
	// HubCenter is the center code that has no storage location of its own;
	// paired with HubCode it collapses into a distinct composite identity.
	HubCenter string
	// HubCode is the sub-location code that, under HubCenter, forms the
	// hub-composite location.
	HubCode string

	// ProductionCode, HubStorageCode and TransitCode select the production,
	// hub and transit tiers by exact storage-location match. Everything else
	// falls into the general tier.
	ProductionCode string
	HubStorageCode string
	TransitCode    string
}

// DefaultOptions returns the codes used by the production ERP extracts.
func DefaultOptions() Options {
	return Options{
		HubCenter:      "TCNO",
		HubCode:        "HUB",
		ProductionCode: "PI01",
		HubStorageCode: "L003",
		TransitCode:    "",
	}
}

// Validate rejects option sets whose tier codes collide: a storage-location
// code matching two tiers would break the disjoint-partition guarantee.
func (o Options) Validate() error {
	codes := map[string]string{}
	for name, code := range map[string]string{
		"production": o.ProductionCode,
		"hub":        o.HubStorageCode,
		"transit":    o.TransitCode,
	} {
		if prev, ok := codes[code]; ok {
			return fmt.Errorf("tier codes collide: %s and %s both use %q", prev, name, code)
		}
		codes[code] = name
	}
	return nil
}

// LocationID derives the canonical location identity from a raw
// (center, storage location) pair. Pure and total: unknown codes pass
// through unchanged.
func (o Options) LocationID(center, storageLoc string) string {
	if center == o.HubCenter && storageLoc == o.HubCode {
		return center + "-" + storageLoc
	}
	return center
}

// CanonicalMaterial normalizes a material code to a stable string form
// regardless of whether it was stored upstream as an integer, a
// float-formatted integer ("4000123.0") or a plain string. Leading zeros are
// preserved.
func CanonicalMaterial(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if frac := s[i+1:]; frac == strings.Repeat("0", len(frac)) && allDigits(s[:i]) {
			return s[:i]
		}
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CompositeKey concatenates a location identity and a canonical material
// code. It is the join key across every table in the engine.
func CompositeKey(locationID, material string) string {
	return locationID + material
}
