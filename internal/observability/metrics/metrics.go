package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking flows.
type BookingMetrics struct {
	createdTotal     *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	fallbackTotal    *prometheus.CounterVec
	lookupsTotal     *prometheus.CounterVec
	staleReadsTotal  prometheus.Counter
	operationLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Bookings created, by backend that stored them",
		}, []string{"backend"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "bookings",
			Name:      "status_transitions_total",
			Help:      "Status change requests by target status and outcome",
		}, []string{"status", "result"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "bookings",
			Name:      "backend_fallback_total",
			Help:      "Switches from the remote store to the local store",
		}, []string{"op"}),
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "bookings",
			Name:      "patient_lookups_total",
			Help:      "Patient portal lookups by whether anything matched",
		}, []string{"matched"}),
		staleReadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dental",
			Subsystem: "bookings",
			Name:      "stale_reads_total",
			Help:      "List calls answered from the cached snapshot after a read failure",
		}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dental",
			Subsystem: "bookings",
			Name:      "operation_latency_seconds",
			Help:      "Latency of booking store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.transitionsTotal, m.fallbackTotal, m.lookupsTotal, m.staleReadsTotal, m.operationLatency)
	return m
}

func (m *BookingMetrics) ObserveCreated(backend string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(backend).Inc()
}

func (m *BookingMetrics) ObserveTransition(status, result string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(status, result).Inc()
}

func (m *BookingMetrics) ObserveFallback(op string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(op).Inc()
}

func (m *BookingMetrics) ObserveLookup(matched bool) {
	if m == nil {
		return
	}
	label := "false"
	if matched {
		label = "true"
	}
	m.lookupsTotal.WithLabelValues(label).Inc()
}

func (m *BookingMetrics) ObserveStaleRead() {
	if m == nil {
		return
	}
	m.staleReadsTotal.Inc()
}

func (m *BookingMetrics) ObserveLatency(op string, seconds float64) {
	if m == nil {
		return
	}
	m.operationLatency.WithLabelValues(op).Observe(seconds)
}
