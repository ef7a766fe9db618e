package core

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when the three observation coordinate arrays
// do not share the same shape. It is checked once per evaluation, before any
// numeric work, and is fatal to the call.
var ErrShapeMismatch = errors.New("observation arrays xp, yp, and zp must have the same shape")

// Observations is a set of observation points as three equal-length
// coordinate slices, metres, in the survey frame (x north, y east, z down).
// Grid-shaped data is stored flattened; Rows/Cols keep the original shape
// for output formatting and are zero for scattered points.
type Observations struct {
	X, Y, Z []float64

	Rows, Cols int
}

// Len returns the number of observation points.
func (o Observations) Len() int { return len(o.X) }

// Validate checks the equal-shape invariant. This is the only validated
// precondition of the evaluators; violations are reported, never silently
// broadcast.
func (o Observations) Validate() error {
	if len(o.X) != len(o.Y) || len(o.X) != len(o.Z) {
		return fmt.Errorf("%w: got x=%d, y=%d, z=%d",
			ErrShapeMismatch, len(o.X), len(o.Y), len(o.Z))
	}
	return nil
}

// Area is a rectangular survey area [X1, X2] x [Y1, Y2], metres.
type Area struct {
	X1, X2, Y1, Y2 float64
}

// RegularGrid builds an nx-by-ny grid of observation points covering the
// area at constant z. The survey frame is depth-positive, so points flown
// or measured above ground level carry negative z. Points are ordered row
// by row with x varying fastest.
func RegularGrid(area Area, nx, ny int, z float64) Observations {
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}

	dx := 0.0
	if nx > 1 {
		dx = (area.X2 - area.X1) / float64(nx-1)
	}
	dy := 0.0
	if ny > 1 {
		dy = (area.Y2 - area.Y1) / float64(ny-1)
	}

	n := nx * ny
	obs := Observations{
		X:    make([]float64, 0, n),
		Y:    make([]float64, 0, n),
		Z:    make([]float64, 0, n),
		Rows: ny,
		Cols: nx,
	}
	for j := 0; j < ny; j++ {
		y := area.Y1 + float64(j)*dy
		for i := 0; i < nx; i++ {
			obs.X = append(obs.X, area.X1+float64(i)*dx)
			obs.Y = append(obs.Y, y)
			obs.Z = append(obs.Z, z)
		}
	}
	return obs
}
