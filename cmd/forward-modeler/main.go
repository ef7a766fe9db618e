package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/subsurfacelabs/potfield/core"
	"github.com/subsurfacelabs/potfield/internal/logging"
	"github.com/subsurfacelabs/potfield/kb"
)

func main() {
	scenarioPath := flag.String("scenario", "survey.json", "Path to the JSON survey scenario")
	field := flag.String("field", "gz", "Field to compute: tf (total-field anomaly, nT) or gz (vertical gravity, mGal)")
	outPath := flag.String("out", "-", "Output path; - writes to stdout")
	format := flag.String("format", "xyz", "Output format: xyz (columns) or json")
	workers := flag.Int("workers", 0, "Worker goroutines for the evaluation; 0 means one per CPU")
	flag.Parse()

	ctx := context.Background()
	log := logging.NewFromEnv()

	if *field != core.FieldTotalField && *field != core.FieldGravityZ {
		log.Error(ctx, "unknown field", logging.String("field", *field))
		os.Exit(2)
	}

	f, err := os.Open(*scenarioPath)
	if err != nil {
		log.Error(ctx, "failed to open scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}

	store := kb.NewModelStore()
	scenario, err := core.LoadSurveyScenario(store, f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load scenario", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if scenario.Obs.Len() == 0 {
		log.Error(ctx, "scenario has no observation points")
		os.Exit(1)
	}

	engine := core.NewEngine(*workers, log, nil)
	spheres := store.Snapshot()

	var values []float64
	var units string
	switch *field {
	case core.FieldTotalField:
		units = "nT"
		values, err = engine.TotalField(ctx, scenario.Obs, spheres, scenario.Ambient)
	case core.FieldGravityZ:
		units = "mGal"
		values, err = engine.GravityZ(ctx, scenario.Obs, spheres)
	}
	if err != nil {
		log.Error(ctx, "evaluation failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "-" {
		out, err = os.Create(*outPath)
		if err != nil {
			log.Error(ctx, "failed to create output file", logging.String("path", *outPath), logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer out.Close()
	}

	switch *format {
	case "json":
		err = writeJSON(out, *field, units, scenario.Obs, values)
	default:
		err = writeXYZ(out, scenario.Obs, values)
	}
	if err != nil {
		log.Error(ctx, "failed to write output", logging.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info(ctx, "forward model complete",
		logging.String("field", *field),
		logging.Int("points", scenario.Obs.Len()),
		logging.Int("sources", len(scenario.SphereIDs)),
	)
}

// writeXYZ writes one "x y z value" line per observation point.
func writeXYZ(w io.Writer, obs core.Observations, values []float64) error {
	for i := range values {
		if _, err := fmt.Fprintf(w, "%g %g %g %.10g\n", obs.X[i], obs.Y[i], obs.Z[i], values[i]); err != nil {
			return err
		}
	}
	return nil
}

type jsonOutput struct {
	Field  string    `json:"field"`
	Units  string    `json:"units"`
	Rows   int       `json:"rows,omitempty"`
	Cols   int       `json:"cols,omitempty"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Z      []float64 `json:"z"`
	Values []float64 `json:"values"`
}

func writeJSON(w io.Writer, field, units string, obs core.Observations, values []float64) error {
	enc := json.NewEncoder(w)
	return enc.Encode(jsonOutput{
		Field:  field,
		Units:  units,
		Rows:   obs.Rows,
		Cols:   obs.Cols,
		X:      obs.X,
		Y:      obs.Y,
		Z:      obs.Z,
		Values: values,
	})
}
