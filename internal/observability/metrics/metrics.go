package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for visit scheduling outcomes.
type BookingMetrics struct {
	bookedTotal   *prometheus.CounterVec
	rejectedTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "scheduling",
			Name:      "booked_total",
			Help:      "Total visits booked, by initial status",
		}, []string{"status"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "scheduling",
			Name:      "rejected_total",
			Help:      "Total booking attempts rejected, by reason",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookedTotal, m.rejectedTotal)
	return m
}

func (m *BookingMetrics) ObserveBooked(status string) {
	if m == nil {
		return
	}
	m.bookedTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

// LeadMetrics counts public lead-form captures.
type LeadMetrics struct {
	capturedTotal *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		capturedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "leads",
			Name:      "captured_total",
			Help:      "Total leads captured via the public form, by source",
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.capturedTotal)
	return m
}

func (m *LeadMetrics) ObserveCaptured(source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.capturedTotal.WithLabelValues(source).Inc()
}
