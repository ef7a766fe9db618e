package api

import (
	"github.com/subsurfacelabs/potfield/core"
	"github.com/subsurfacelabs/potfield/kb"
	"github.com/subsurfacelabs/potfield/model"
)

// observationsBody carries the three coordinate arrays of a request,
// metres, survey frame (x north, y east, z down).
type observationsBody struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	Z []float64 `json:"z"`
}

func (o observationsBody) toCore() core.Observations {
	return core.Observations{X: o.X, Y: o.Y, Z: o.Z}
}

// totalFieldRequest is the body of POST /v1/fields/total-field. Omitted
// inclination/declination fall back to the server's configured ambient
// field.
type totalFieldRequest struct {
	Observations observationsBody `json:"observations"`
	Inclination  *float64         `json:"inclination"`
	Declination  *float64         `json:"declination"`
}

// gravityRequest is the body of POST /v1/fields/gravity.
type gravityRequest struct {
	Observations observationsBody `json:"observations"`
}

// fieldResponse returns one value per observation point.
type fieldResponse struct {
	Field  string    `json:"field"`
	Units  string    `json:"units"`
	Values []float64 `json:"values"`
}

// sphereBody is the wire form of a sphere, shared by requests and
// responses. Optional properties stay pointers so absence survives the
// round trip.
type sphereBody struct {
	ID     string  `json:"id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`

	Density       *float64 `json:"density,omitempty"`
	Magnetization *float64 `json:"magnetization,omitempty"`
	Inclination   *float64 `json:"inclination,omitempty"`
	Declination   *float64 `json:"declination,omitempty"`

	Active *bool `json:"active,omitempty"`
}

func (b sphereBody) toModel() *model.Sphere {
	return &model.Sphere{
		ID:     b.ID,
		X:      b.X,
		Y:      b.Y,
		Z:      b.Z,
		Radius: b.Radius,
		Props: model.Properties{
			Density:        b.Density,
			Magnetization:  b.Magnetization,
			InclinationDeg: b.Inclination,
			DeclinationDeg: b.Declination,
		},
	}
}

func sphereBodyFromEntry(e kb.Entry) sphereBody {
	active := e.Active
	return sphereBody{
		ID:            e.Sphere.ID,
		X:             e.Sphere.X,
		Y:             e.Sphere.Y,
		Z:             e.Sphere.Z,
		Radius:        e.Sphere.Radius,
		Density:       e.Sphere.Props.Density,
		Magnetization: e.Sphere.Props.Magnetization,
		Inclination:   e.Sphere.Props.InclinationDeg,
		Declination:   e.Sphere.Props.DeclinationDeg,
		Active:        &active,
	}
}

type sphereListResponse struct {
	Spheres []sphereBody `json:"spheres"`
}

type sphereCreatedResponse struct {
	ID string `json:"id"`
}
