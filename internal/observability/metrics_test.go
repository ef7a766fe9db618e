package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveEvaluationRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.ObserveEvaluation("gz", 1024, 12*time.Millisecond, nil)

	if got := testutil.ToFloat64(collector.Evaluations.WithLabelValues("gz", "ok")); got != 1 {
		t.Fatalf("potfield_evaluations_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "potfield_evaluation_duration_seconds", map[string]string{
		"field": "gz",
	}); count != 1 {
		t.Fatalf("potfield_evaluation_duration_seconds sample_count = %d, want 1", count)
	}
	if count := histogramSampleCount(t, reg, "potfield_evaluation_points", map[string]string{
		"field": "gz",
	}); count != 1 {
		t.Fatalf("potfield_evaluation_points sample_count = %d, want 1", count)
	}
}

func TestObserveEvaluationRecordsErrorOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.ObserveEvaluation("tf", 0, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(collector.Evaluations.WithLabelValues("tf", "error")); got != 1 {
		t.Fatalf("error outcome = %v, want 1", got)
	}
	// Failed evaluations do not pollute the latency histogram.
	if count := histogramSampleCount(t, reg, "potfield_evaluation_duration_seconds", map[string]string{
		"field": "tf",
	}); count != 0 {
		t.Fatalf("duration sample_count = %d, want 0", count)
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.ObserveHTTPRequest("POST /v1/fields/gravity", "POST", 200, 5*time.Millisecond)

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("POST /v1/fields/gravity", "POST", "200")); got != 1 {
		t.Fatalf("potfield_http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesModelGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.SetModelCounts(3, 5)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body := readAll(t, resp)
	if !strings.Contains(body, "potfield_model_spheres_active 3") {
		t.Errorf("active gauge missing from scrape:\n%s", body)
	}
	if !strings.Contains(body, "potfield_model_spheres_total 5") {
		t.Errorf("total gauge missing from scrape:\n%s", body)
	}
}

func TestNewCollectorTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector (again): %v", err)
	}
	if first.Evaluations != second.Evaluations {
		t.Errorf("second collector did not reuse registered counter")
	}
}

func histogramSampleCount(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if matchesLabels(m, labels) {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchesLabels(m *dto.Metric, labels map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		got[l.GetName()] = l.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}
