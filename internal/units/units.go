// Package units converts ingredient amounts between measurement units.
//
// Units are partitioned into two families, mass and volume, each with a
// fixed multiplier to a canonical base unit (grams for mass, millilitres
// for volume). Conversion across families would require a density, which
// we do not have, so such conversions pass the amount through unchanged.
package units

import "strings"

// Family identifies the measurement family a unit belongs to.
type Family string

const (
	FamilyMass   Family = "mass"
	FamilyVolume Family = "volume"
)

type unitDef struct {
	family Family
	toBase float64
}

// Multipliers to the base unit: g for mass, ml for volume.
var unitTable = map[string]unitDef{
	"g":  {family: FamilyMass, toBase: 1},
	"kg": {family: FamilyMass, toBase: 1000},
	"oz": {family: FamilyMass, toBase: 28.3495},
	"lb": {family: FamilyMass, toBase: 453.592},

	"ml":   {family: FamilyVolume, toBase: 1},
	"l":    {family: FamilyVolume, toBase: 1000},
	"cup":  {family: FamilyVolume, toBase: 236.588},
	"tbsp": {family: FamilyVolume, toBase: 14.7868},
	"tsp":  {family: FamilyVolume, toBase: 4.92892},
}

// Normalize lowercases and trims a unit string so that "G", " kg " and
// "kg" key the same table entry.
func Normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// Known reports whether the unit belongs to one of the conversion tables.
func Known(unit string) bool {
	_, ok := unitTable[Normalize(unit)]
	return ok
}

// FamilyOf returns the family of a known unit. The second return value is
// false for unrecognized units ("piece", "slice", free-form text).
func FamilyOf(unit string) (Family, bool) {
	def, ok := unitTable[Normalize(unit)]
	return def.family, ok
}

// Compatible reports whether an amount can actually be converted between
// the two units, i.e. both are known and share a family. Identical unit
// strings are always compatible.
func Compatible(from, to string) bool {
	if Normalize(from) == Normalize(to) {
		return true
	}
	ff, okF := FamilyOf(from)
	tf, okT := FamilyOf(to)
	return okF && okT && ff == tf
}

// Convert converts amount from one unit to another via the family's base
// unit. Identical units return the amount untouched with no floating
// error introduced. Cross-family or unrecognized conversions are
// undefined without a density, so the amount is returned unchanged;
// callers that care can check Compatible first. Convert never fails.
func Convert(amount float64, from, to string) float64 {
	nf, nt := Normalize(from), Normalize(to)
	if nf == nt {
		return amount
	}
	fromDef, okF := unitTable[nf]
	toDef, okT := unitTable[nt]
	if !okF || !okT || fromDef.family != toDef.family {
		return amount
	}
	return amount * fromDef.toBase / toDef.toBase
}
