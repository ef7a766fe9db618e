// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/subsurfacelabs/potfield/kb"
	"github.com/subsurfacelabs/potfield/model"
)

// SurveyScenario is a small summary of what was loaded from JSON, plus the
// pieces the binaries need to run an evaluation.
type SurveyScenario struct {
	SphereIDs []string
	Ambient   model.AmbientField
	Obs       Observations
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type surveyScenarioJSON struct {
	AmbientField *ambientFieldJSON `json:"ambient_field"`
	Spheres      []sphereJSON      `json:"spheres"`
	Grid         *gridJSON         `json:"grid"`
	Points       []pointJSON       `json:"points"`
}

type ambientFieldJSON struct {
	Inclination float64 `json:"inclination"`
	Declination float64 `json:"declination"`
}

type sphereJSON struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`

	// Optional physical properties; absent keys stay absent in the model.
	Density       *float64 `json:"density"`
	Magnetization *float64 `json:"magnetization"`
	Inclination   *float64 `json:"inclination"`
	Declination   *float64 `json:"declination"`

	Active *bool `json:"active"` // optional; defaults to true
}

type gridJSON struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
	Y1 float64 `json:"y1"`
	Y2 float64 `json:"y2"`
	NX int     `json:"nx"`
	NY int     `json:"ny"`
	Z  float64 `json:"z"`
}

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LoadSurveyScenario reads a JSON scenario from r, populates the ModelStore
// with spheres, and returns the observation set and ambient field described
// by the file. Spheres marked inactive are added and then deactivated, so
// they occupy a tombstone slot exactly as a live deactivation would.
//
// It deliberately fails only on JSON / structural errors. Property-level
// filtering (a sphere without the field's required property) is the
// evaluators' business, not the loader's.
func LoadSurveyScenario(store *kb.ModelStore, r io.Reader) (*SurveyScenario, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadSurveyScenario: store is nil")
	}

	var payload surveyScenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadSurveyScenario: decode failed: %w", err)
	}
	if payload.Grid != nil && len(payload.Points) > 0 {
		return nil, fmt.Errorf("LoadSurveyScenario: scenario has both a grid and a point list")
	}

	result := &SurveyScenario{
		SphereIDs: make([]string, 0, len(payload.Spheres)),
	}

	if payload.AmbientField != nil {
		result.Ambient = model.AmbientField{
			InclinationDeg: payload.AmbientField.Inclination,
			DeclinationDeg: payload.AmbientField.Declination,
		}
	}

	for _, js := range payload.Spheres {
		if js.Radius <= 0 {
			return nil, fmt.Errorf("LoadSurveyScenario: sphere %q has no radius", js.ID)
		}
		s := &model.Sphere{
			ID:     js.ID,
			X:      js.X,
			Y:      js.Y,
			Z:      js.Z,
			Radius: js.Radius,
			Props: model.Properties{
				Density:        js.Density,
				Magnetization:  js.Magnetization,
				InclinationDeg: js.Inclination,
				DeclinationDeg: js.Declination,
			},
		}

		id, err := store.AddSphere(s)
		if err != nil {
			return nil, fmt.Errorf("LoadSurveyScenario: add sphere: %w", err)
		}
		if js.Active != nil && !*js.Active {
			if err := store.Deactivate(id); err != nil {
				return nil, fmt.Errorf("LoadSurveyScenario: deactivate sphere: %w", err)
			}
		}
		result.SphereIDs = append(result.SphereIDs, id)
	}

	switch {
	case payload.Grid != nil:
		g := payload.Grid
		result.Obs = RegularGrid(Area{X1: g.X1, X2: g.X2, Y1: g.Y1, Y2: g.Y2}, g.NX, g.NY, g.Z)
	case len(payload.Points) > 0:
		obs := Observations{
			X: make([]float64, 0, len(payload.Points)),
			Y: make([]float64, 0, len(payload.Points)),
			Z: make([]float64, 0, len(payload.Points)),
		}
		for _, p := range payload.Points {
			obs.X = append(obs.X, p.X)
			obs.Y = append(obs.Y, p.Y)
			obs.Z = append(obs.Z, p.Z)
		}
		result.Obs = obs
	}

	return result, nil
}
