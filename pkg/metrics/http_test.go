package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveCountsByStatusClass(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/v1/containers", 200, 5*time.Millisecond)
	m.Observe("GET", "/v1/containers", 404, time.Millisecond)
	m.Observe("POST", "/v1/containers", 500, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var counter *dto.MetricFamily
	for _, fam := range families {
		if fam.GetName() == "http_requests_total" {
			counter = fam
		}
	}
	if counter == nil {
		t.Fatal("http_requests_total not registered")
	}
	if len(counter.GetMetric()) != 3 {
		t.Fatalf("expected 3 label combinations, got %d", len(counter.GetMetric()))
	}

	classes := map[string]bool{}
	for _, metric := range counter.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "status" {
				classes[label.GetValue()] = true
			}
		}
	}
	for _, want := range []string{"2xx", "4xx", "5xx"} {
		if !classes[want] {
			t.Fatalf("missing status class %s in %v", want, classes)
		}
	}
}

func TestObserveOnNilMetricsIsNoop(t *testing.T) {
	var m *HTTPMetrics
	m.Observe("GET", "/", 200, time.Millisecond) // must not panic

	empty := NewHTTPMetrics(nil)
	empty.Observe("GET", "/", 200, time.Millisecond)
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel("  "); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	if got := normalizeLabel("/v1/items"); !strings.HasPrefix(got, "/v1") {
		t.Fatalf("unexpected label %q", got)
	}
}
