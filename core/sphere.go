package core

import (
	"math"

	"github.com/subsurfacelabs/potfield/model"
)

// pointContribution evaluates one source's field contribution at a single
// observation point, given source-centred coordinates (point minus centre).
type pointContribution func(x, y, z float64) float64

// totalFieldContribution builds the per-point total-field contribution of
// one sphere, resolving the magnetization direction and dipole moment once
// so the hot loop only evaluates the field formula. It reports false when
// the sphere takes no part: a nil tombstone (source deactivated upstream)
// or a sphere without a magnetization.
//
// f is the ambient-field unit vector, resolved once per call by the
// evaluator.
func totalFieldContribution(s *model.Sphere, ambient model.AmbientField, f Vec3) (pointContribution, bool) {
	if s == nil || !s.Props.HasMagnetization() {
		return nil, false
	}

	m := f
	if s.Props.HasDirection() {
		m = DirectionCosines(s.Props.Direction(ambient))
	}
	moment := *s.Props.Magnetization * s.Volume()

	return func(x, y, z float64) float64 {
		dot := m.X*x + m.Y*y + m.Z*z
		rSqr := x*x + y*y + z*z
		r5 := math.Pow(rSqr, 2.5)
		bx := moment * (3*dot*x - rSqr*m.X) / r5
		by := moment * (3*dot*y - rSqr*m.Y) / r5
		bz := moment * (3*dot*z - rSqr*m.Z) / r5
		// Total-field anomaly approximation: project the perturbation
		// onto the ambient field direction.
		return f.X*bx + f.Y*by + f.Z*bz
	}, true
}

// gravityZContribution builds the per-point vertical attraction of one
// sphere, treated as a point mass at its centre. It reports false for nil
// tombstones and spheres without a density.
func gravityZContribution(s *model.Sphere) (pointContribution, bool) {
	if s == nil || !s.Props.HasDensity() {
		return nil, false
	}
	mass := *s.Props.Density * s.Volume()

	return func(x, y, z float64) float64 {
		rCb := math.Pow(x*x+y*y+z*z, 1.5)
		return mass * z / rCb
	}, true
}

// TotalField computes the magnetic total-field anomaly of the spheres at
// every observation point, in nanotesla. Input units are SI; ambient gives
// the regional field direction in degrees. Spheres carrying both their own
// inclination and declination magnetize along that direction instead; the
// projection always uses the ambient direction.
//
// Nil entries in spheres and spheres without a magnetization are skipped.
// An observation point coinciding with a sphere centre divides by zero and
// yields a non-finite value at that position only; the call still completes.
func TotalField(obs Observations, spheres []*model.Sphere, ambient model.AmbientField) ([]float64, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	f := DirectionCosines(ambient.InclinationDeg, ambient.DeclinationDeg)
	out := make([]float64, obs.Len())
	for _, s := range spheres {
		contrib, ok := totalFieldContribution(s, ambient, f)
		if !ok {
			continue
		}
		accumulate(out, obs, s, contrib, 0, obs.Len())
	}
	applyScale(out, CM*T2NT)
	return out, nil
}

// GravityZ computes the vertical gravity acceleration of the spheres at
// every observation point, in milligal. Input units are SI. Each sphere is
// modelled as an equivalent point mass at its centre, which is exact for
// points outside the sphere and kept as-is everywhere else.
//
// Nil entries in spheres and spheres without a density are skipped. The
// zero-distance behaviour matches TotalField: a non-finite value at the
// coincident point only.
func GravityZ(obs Observations, spheres []*model.Sphere) ([]float64, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, obs.Len())
	for _, s := range spheres {
		contrib, ok := gravityZContribution(s)
		if !ok {
			continue
		}
		accumulate(out, obs, s, contrib, 0, obs.Len())
	}
	applyScale(out, Gravitational*SI2MGal)
	return out, nil
}

// accumulate adds one sphere's contribution to out over the half-open point
// range [lo, hi). Translating each point into the source-centred frame here
// keeps the contribution closures free of per-sphere offsets.
func accumulate(out []float64, obs Observations, s *model.Sphere, contrib pointContribution, lo, hi int) {
	for i := lo; i < hi; i++ {
		out[i] += contrib(obs.X[i]-s.X, obs.Y[i]-s.Y, obs.Z[i]-s.Z)
	}
}

// applyScale multiplies the accumulator by a unit-conversion factor.
func applyScale(out []float64, factor float64) {
	for i := range out {
		out[i] *= factor
	}
}
