// Package metrics holds the prometheus collectors shared by the streaming
// client and the relay server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StreamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepchat_streams_total",
			Help: "Completed streaming calls by model and terminal outcome.",
		},
		[]string{"model", "outcome"},
	)
	DeltasTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepchat_stream_deltas_total",
			Help: "Deltas delivered to callers by kind (content, reasoning).",
		},
		[]string{"kind"},
	)
	WarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepchat_warnings_total",
			Help: "Non-fatal warnings absorbed by the client.",
		},
		[]string{"kind"},
	)
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepchat_http_requests_total",
			Help: "Total number of relay HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deepchat_http_request_duration_seconds",
			Help:    "Relay HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(StreamsTotal)
	prometheus.MustRegister(DeltasTotal)
	prometheus.MustRegister(WarningsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}

// Recorder receives stream telemetry. Prometheus is the production sink;
// tests may pass their own.
type Recorder interface {
	Stream(model, outcome string)
	Delta(kind string)
	Warning(kind string)
}

type Prometheus struct{}

func (Prometheus) Stream(model, outcome string) {
	StreamsTotal.WithLabelValues(model, outcome).Inc()
}

func (Prometheus) Delta(kind string) {
	DeltasTotal.WithLabelValues(kind).Inc()
}

func (Prometheus) Warning(kind string) {
	WarningsTotal.WithLabelValues(kind).Inc()
}
