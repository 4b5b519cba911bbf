package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBuildMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewBuildMetrics(reg)
	metrics.ObserveSuccess(64)
	metrics.ObserveSuccess(128)
	metrics.ObserveFailure("INVALID_STATUS_CODE")
	metrics.ObserveFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "envelope_builds_total", "outcome", "ok"); err != nil {
		t.Fatalf("fetch ok: %v", err)
	} else if got != 2 {
		t.Fatalf("expected ok=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "envelope_builds_total", "outcome", "INVALID_STATUS_CODE"); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if _, err := fetchCounterValue(mfs, "envelope_builds_total", "outcome", "unknown"); err != nil {
		t.Fatalf("empty code should be labelled unknown: %v", err)
	}

	mf := findMetricFamily(mfs, "envelope_bytes")
	if mf == nil {
		t.Fatalf("envelope_bytes not found")
	}
	if got := mf.GetMetric()[0].GetHistogram().GetSampleSum(); got != 192 {
		t.Fatalf("expected payload sum 192, got %f", got)
	}
}

func TestNilBuildMetricsIsNoop(t *testing.T) {
	var m *BuildMetrics
	m.ObserveSuccess(10)
	m.ObserveFailure("X")
	NewBuildMetrics(nil).ObserveSuccess(10)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
