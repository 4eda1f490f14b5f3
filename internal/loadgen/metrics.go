package loadgen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics are registered in a registry owned by one run
type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	activeUsers prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bmctest_load_requests_total",
				Help: "Total number of load task executions",
			},
			[]string{"task", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bmctest_load_request_duration_seconds",
				Help:    "Load task latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		activeUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bmctest_load_active_users",
				Help: "Number of running simulated users",
			},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.activeUsers)
	return m
}

func (m *metrics) observe(task string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.requests.WithLabelValues(task, result).Inc()
	m.duration.WithLabelValues(task).Observe(d.Seconds())
}
