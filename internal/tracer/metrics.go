package tracer

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the collectors a CallTracker reports to. A nil *Metrics
// disables reporting. Several trackers may share one Metrics.
type Metrics struct {
	Calls    prometheus.Counter
	Failures prometheus.Counter

	// Depth observes the call-stack depth of each call as it begins; 1 for a root.
	Depth prometheus.Histogram
}

// NewMetrics creates unregistered collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Calls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Number of tracked calls started.",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Number of tracked calls that returned an error or panicked.",
		}),
		Depth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_depth",
			Help:      "Call-stack depth at which tracked calls begin.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// Collectors returns the collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Calls, m.Failures, m.Depth}
}

func (m *Metrics) called(depth int) {
	if m == nil {
		return
	}
	m.Calls.Inc()
	m.Depth.Observe(float64(depth))
}

func (m *Metrics) failed() {
	if m == nil {
		return
	}
	m.Failures.Inc()
}
