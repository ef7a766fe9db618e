package api

import "fmt"

// validateObservations performs basic presence validation; the equal-shape
// invariant itself is the core's check and surfaces as ErrShapeMismatch.
func validateObservations(o observationsBody) error {
	if o.X == nil || o.Y == nil || o.Z == nil {
		return fmt.Errorf("%w: observations.x, observations.y, and observations.z are required", ErrInvalidRequest)
	}
	return nil
}

// validateSphere checks a sphere payload for required fields. Physical
// plausibility beyond presence is deliberately not checked.
func validateSphere(b sphereBody) error {
	if b.Radius <= 0 {
		return fmt.Errorf("%w: radius is required and must be positive", ErrInvalidRequest)
	}
	if (b.Inclination == nil) != (b.Declination == nil) {
		return fmt.Errorf("%w: inclination and declination must be given together or not at all", ErrInvalidRequest)
	}
	return nil
}
