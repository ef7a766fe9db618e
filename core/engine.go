package core

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/subsurfacelabs/potfield/internal/logging"
	"github.com/subsurfacelabs/potfield/model"
)

const tracerName = "github.com/subsurfacelabs/potfield/core"

// Field names used in metrics, spans, and logs.
const (
	FieldTotalField = "tf"
	FieldGravityZ   = "gz"
)

// MetricsRecorder receives one record per finished evaluation. Implemented
// by the observability collector; a nil recorder disables recording.
type MetricsRecorder interface {
	ObserveEvaluation(field string, points int, elapsed time.Duration, err error)
}

// Engine runs the field evaluators with the service's ambient concerns
// attached: observation points are partitioned across workers, evaluations
// are wrapped in spans, and outcomes are logged and recorded as metrics.
// The package-level TotalField and GravityZ functions remain the plain,
// uninstrumented path.
//
// Partitioning by point needs no synchronization beyond the final join:
// each point's sum is independent of every other point's.
type Engine struct {
	workers int
	log     logging.Logger
	metrics MetricsRecorder
}

// NewEngine builds an Engine. workers <= 0 means one worker per CPU; log
// may be nil for a silent engine; metrics may be nil.
func NewEngine(workers int, log logging.Logger, metrics MetricsRecorder) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Engine{workers: workers, log: log, metrics: metrics}
}

// TotalField is the instrumented, parallel counterpart of the package-level
// TotalField.
func (e *Engine) TotalField(ctx context.Context, obs Observations, spheres []*model.Sphere, ambient model.AmbientField) ([]float64, error) {
	f := DirectionCosines(ambient.InclinationDeg, ambient.DeclinationDeg)
	gate := func(s *model.Sphere) (pointContribution, bool) {
		return totalFieldContribution(s, ambient, f)
	}
	return e.evaluate(ctx, FieldTotalField, obs, spheres, CM*T2NT, gate)
}

// GravityZ is the instrumented, parallel counterpart of the package-level
// GravityZ.
func (e *Engine) GravityZ(ctx context.Context, obs Observations, spheres []*model.Sphere) ([]float64, error) {
	gate := func(s *model.Sphere) (pointContribution, bool) {
		return gravityZContribution(s)
	}
	return e.evaluate(ctx, FieldGravityZ, obs, spheres, Gravitational*SI2MGal, gate)
}

type boundSphere struct {
	sphere  *model.Sphere
	contrib pointContribution
}

func (e *Engine) evaluate(ctx context.Context, field string, obs Observations, spheres []*model.Sphere, unitScale float64, gate func(*model.Sphere) (pointContribution, bool)) ([]float64, error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Engine.Evaluate")
	span.SetAttributes(
		attribute.String("field", field),
		attribute.Int("points", obs.Len()),
		attribute.Int("sources", len(spheres)),
	)
	defer span.End()

	out, err := e.run(obs, spheres, unitScale, gate)

	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		e.log.Error(ctx, "field evaluation failed",
			logging.String("field", field),
			logging.String("error", err.Error()),
		)
	} else {
		e.log.Debug(ctx, "field evaluation complete",
			logging.String("field", field),
			logging.Int("points", obs.Len()),
			logging.Int("sources", len(spheres)),
			logging.Duration("elapsed", elapsed),
		)
	}
	if e.metrics != nil {
		e.metrics.ObserveEvaluation(field, obs.Len(), elapsed, err)
	}
	return out, err
}

func (e *Engine) run(obs Observations, spheres []*model.Sphere, unitScale float64, gate func(*model.Sphere) (pointContribution, bool)) ([]float64, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	// Resolve directions and moments once per sphere, outside the hot loop.
	bound := make([]boundSphere, 0, len(spheres))
	for _, s := range spheres {
		if contrib, ok := gate(s); ok {
			bound = append(bound, boundSphere{sphere: s, contrib: contrib})
		}
	}

	n := obs.Len()
	out := make([]float64, n)

	workers := e.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for _, b := range bound {
			accumulate(out, obs, b.sphere, b.contrib, 0, n)
		}
		applyScale(out, unitScale)
		return out, nil
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for _, b := range bound {
				accumulate(out, obs, b.sphere, b.contrib, lo, hi)
			}
		}(lo, hi)
	}
	wg.Wait()

	applyScale(out, unitScale)
	return out, nil
}
