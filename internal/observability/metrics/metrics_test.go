package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooked("pending")
	m.ObserveBooked("confirmed")
	m.ObserveRejected("conflict")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) != 2 {
		t.Fatalf("expected 2 metric families, got %d", len(families))
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooked("pending")
	m.ObserveRejected("validation")

	var lm *LeadMetrics
	lm.ObserveCaptured("web")
}

func TestLeadMetricsDefaultsSource(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)

	m.ObserveCaptured("")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) != 1 {
		t.Fatalf("expected 1 metric family, got %d", len(families))
	}
	metric := families[0].GetMetric()
	if len(metric) != 1 || metric[0].GetLabel()[0].GetValue() != "unknown" {
		t.Fatalf("expected unknown source label, got %v", metric)
	}
}
