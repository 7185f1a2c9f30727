package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the scheduling engine.
type BookingMetrics struct {
	bookingsTotal     *prometheus.CounterVec
	bumpsTotal        prometheus.Counter
	allocationLatency prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careconnect",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by urgency level and outcome",
		}, []string{"urgency", "outcome"}),
		bumpsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "careconnect",
			Subsystem: "scheduling",
			Name:      "bumps_total",
			Help:      "Appointments displaced by higher-priority cases",
		}),
		allocationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "careconnect",
			Subsystem: "scheduling",
			Name:      "allocation_latency_seconds",
			Help:      "Latency of the transactional slot allocation step",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.bumpsTotal, m.allocationLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(urgency, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(urgency, outcome).Inc()
}

func (m *BookingMetrics) ObserveBump() {
	if m == nil {
		return
	}
	m.bumpsTotal.Inc()
}

func (m *BookingMetrics) ObserveAllocationLatency(seconds float64) {
	if m == nil {
		return
	}
	m.allocationLatency.Observe(seconds)
}
