// Package lifecycle estimates material usage and embodied carbon for
// building elements from their geometric volume. The factor tables are
// deliberately coarse: one density and one emission factor per IFC
// type, with a fallback for anything unlisted. Callers can override
// either value per request.
package lifecycle

import "math"

// Factors holds the physical constants used for one IFC type.
type Factors struct {
	Density      float64 // kg/m^3
	CarbonFactor float64 // kgCO2e per kg of material
}

// DefaultKey is the table entry used when an IFC type has no row of
// its own.
const DefaultKey = "default"

// Table maps IFC type names to lifecycle factors.
type Table map[string]Factors

// DefaultTable returns the built-in factor table. Slabs and walls are
// concrete-ish; beams and columns are steel.
func DefaultTable() Table {
	return Table{
		"IfcSlab":   {Density: 2300, CarbonFactor: 0.12},
		"IfcWall":   {Density: 2000, CarbonFactor: 0.12},
		"IfcBeam":   {Density: 7850, CarbonFactor: 1.90},
		"IfcColumn": {Density: 7850, CarbonFactor: 1.90},
		DefaultKey:  {Density: 2400, CarbonFactor: 0.10},
	}
}

// Lookup returns the factors for an IFC type, falling back to the
// default row for unlisted types.
func (t Table) Lookup(ifcType string) Factors {
	if f, ok := t[ifcType]; ok {
		return f
	}
	return t[DefaultKey]
}

// round3 rounds to 3 decimal places, the reporting precision for
// masses and carbon figures.
func round3(x float64) float64 {
	return math.Round(x*1e3) / 1e3
}

// MaterialUsage computes the total material mass (kg) for an element
// of the given volume (m^3) and IFC type. A non-nil density overrides
// the table value. Negative products clamp to zero.
func MaterialUsage(volume float64, ifcType string, t Table, density *float64) float64 {
	rho := t.Lookup(ifcType).Density
	if density != nil {
		rho = *density
	}
	return round3(math.Max(0, volume*rho))
}

// EmbodiedCarbon estimates embodied carbon (kgCO2e) for an element of
// the given volume (m^3) and IFC type. Mass is computed first with
// MaterialUsage, at its own rounding, then scaled by the emission
// factor. Non-nil carbonFactor or density override the table values.
func EmbodiedCarbon(volume float64, ifcType string, t Table, carbonFactor, density *float64) float64 {
	factor := t.Lookup(ifcType).CarbonFactor
	if carbonFactor != nil {
		factor = *carbonFactor
	}
	mass := MaterialUsage(volume, ifcType, t, density)
	return round3(math.Max(0, mass*factor))
}
