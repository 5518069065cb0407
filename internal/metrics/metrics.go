package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts WebHDFS operations made during one invocation. Its
// registry is private so that tests and the interactive shell can create
// as many as they like.
type Recorder struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failover prometheus.Counter
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hdfsh_webhdfs_requests_total",
				Help: "WebHDFS requests by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hdfsh_webhdfs_request_duration_seconds",
				Help:    "Time for WebHDFS requests",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
			},
			[]string{"op"},
		),
		failover: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hdfsh_namenode_failovers_total",
			Help: "Times a request moved on to the next namenode",
		}),
	}
	r.registry.MustRegister(r.requests, r.duration, r.failover)
	return r
}

// ObserveRequest records one completed request. outcome is "ok" or the
// remote exception class, or "transport" for connection failures.
func (r *Recorder) ObserveRequest(op, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(op, outcome).Inc()
	r.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveFailover records a switch to the next namenode.
func (r *Recorder) ObserveFailover() {
	if r == nil {
		return
	}
	r.failover.Inc()
}

// Gatherer exposes the collected metrics.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the collected metrics in the text exposition format
// for the node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Gatherer())
}
