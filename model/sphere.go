package model

import "math"

// Properties holds the physical properties a source may carry. A nil field
// means the property is absent: evaluators that require a property skip
// sources that do not carry it, silently.
type Properties struct {
	Density        *float64 // kg/m^3
	Magnetization  *float64 // A/m
	InclinationDeg *float64 // degrees
	DeclinationDeg *float64 // degrees
}

// Float wraps a value for use as an optional property in literals.
func Float(v float64) *float64 { return &v }

// HasDensity reports whether the source carries a density.
func (p Properties) HasDensity() bool { return p.Density != nil }

// HasMagnetization reports whether the source carries a magnetization.
func (p Properties) HasMagnetization() bool { return p.Magnetization != nil }

// HasDirection reports whether the source carries its own magnetization
// direction. Both inclination and declination must be present; a lone angle
// does not count and the ambient direction is used instead.
func (p Properties) HasDirection() bool {
	return p.InclinationDeg != nil && p.DeclinationDeg != nil
}

// Direction returns the magnetization direction of a source in degrees.
// Sources with both their own inclination and declination use those (e.g.
// remanent magnetization); everything else magnetizes along the ambient
// field.
func (p Properties) Direction(ambient AmbientField) (incDeg, decDeg float64) {
	if p.HasDirection() {
		return *p.InclinationDeg, *p.DeclinationDeg
	}
	return ambient.InclinationDeg, ambient.DeclinationDeg
}

// AmbientField is the regional (inducing) field direction in degrees.
// Inclination is measured from the horizontal, positive down; declination
// from north (x) toward east (y).
type AmbientField struct {
	InclinationDeg float64
	DeclinationDeg float64
}

// Sphere is a homogeneous spherical source. Coordinates are metres in the
// survey frame shared with observation points: x north, y east, z down.
type Sphere struct {
	ID string

	// Centre, metres.
	X, Y, Z float64

	// Radius, metres.
	Radius float64

	Props Properties
}

// Volume returns the sphere's volume in cubic metres.
func (s *Sphere) Volume() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius * s.Radius / 3.0
}
