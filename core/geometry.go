package core

import "math"

// Vec3 is a vector in the survey frame: x north, y east, z down.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Scale returns the vector multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// DirectionCosines returns the unit vector described by an inclination and
// declination pair in degrees. Inclination is measured from the horizontal,
// positive down; declination from north (x) toward east (y). Any finite
// input produces a finite unit vector.
func DirectionCosines(incDeg, decDeg float64) Vec3 {
	const d2r = math.Pi / 180.0
	inc := incDeg * d2r
	dec := decDeg * d2r
	return Vec3{
		X: math.Cos(inc) * math.Cos(dec),
		Y: math.Cos(inc) * math.Sin(dec),
		Z: math.Sin(inc),
	}
}
