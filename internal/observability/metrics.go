package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of the forward-modeling service
// and provides helpers to wire them into the engine, the model store, and
// HTTP handlers.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Evaluations   *prometheus.CounterVec
	EvalDurations *prometheus.HistogramVec
	EvalPoints    *prometheus.HistogramVec

	ModelSpheresActive prometheus.Gauge
	ModelSpheresTotal  prometheus.Gauge
}

// NewCollector registers the service metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "potfield_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "status"})
	httpRequests, err := registerCounterVec(reg, httpRequests, "potfield_http_requests_total")
	if err != nil {
		return nil, err
	}

	httpDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "potfield_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	httpDurations, err = registerHistogramVec(reg, httpDurations, "potfield_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "potfield_evaluations_total",
		Help: "Total number of field evaluations, labeled by field (tf, gz) and outcome (ok, error).",
	}, []string{"field", "outcome"})
	evaluations, err = registerCounterVec(reg, evaluations, "potfield_evaluations_total")
	if err != nil {
		return nil, err
	}

	evalDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "potfield_evaluation_duration_seconds",
		Help:    "Field evaluation latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"field"})
	evalDurations, err = registerHistogramVec(reg, evalDurations, "potfield_evaluation_duration_seconds")
	if err != nil {
		return nil, err
	}

	evalPoints := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "potfield_evaluation_points",
		Help:    "Number of observation points per evaluation.",
		Buckets: prometheus.ExponentialBuckets(16, 4, 10),
	}, []string{"field"})
	evalPoints, err = registerHistogramVec(reg, evalPoints, "potfield_evaluation_points")
	if err != nil {
		return nil, err
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "potfield_model_spheres_active",
		Help: "Current number of active spheres in the model store.",
	}), "potfield_model_spheres_active")
	if err != nil {
		return nil, err
	}
	total, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "potfield_model_spheres_total",
		Help: "Current number of spheres in the model store, deactivated ones included.",
	}), "potfield_model_spheres_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		HTTPRequests:       httpRequests,
		HTTPDurations:      httpDurations,
		Evaluations:        evaluations,
		EvalDurations:      evalDurations,
		EvalPoints:         evalPoints,
		ModelSpheresActive: active,
		ModelSpheresTotal:  total,
	}, nil
}

// ObserveEvaluation satisfies the engine's MetricsRecorder interface: one
// record per finished evaluation.
func (c *Collector) ObserveEvaluation(field string, points int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.Evaluations != nil {
		c.Evaluations.WithLabelValues(field, outcome).Inc()
	}
	if err != nil {
		return
	}
	if c.EvalDurations != nil {
		c.EvalDurations.WithLabelValues(field).Observe(elapsed.Seconds())
	}
	if c.EvalPoints != nil {
		c.EvalPoints.WithLabelValues(field).Observe(float64(points))
	}
}

// ObserveHTTPRequest records one handled HTTP request.
func (c *Collector) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.HTTPRequests != nil {
		c.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
	if c.HTTPDurations != nil {
		c.HTTPDurations.WithLabelValues(route, method).Observe(elapsed.Seconds())
	}
}

// SetModelCounts drives the model gauges; wired to the store's event
// subscription so mutators update them directly.
func (c *Collector) SetModelCounts(active, total int) {
	if c == nil {
		return
	}
	if c.ModelSpheresActive != nil {
		c.ModelSpheresActive.Set(float64(active))
	}
	if c.ModelSpheresTotal != nil {
		c.ModelSpheresTotal.Set(float64(total))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
