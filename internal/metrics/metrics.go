package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "log_receiver_messages_total",
		Help: "The total number of log messages received, by outcome",
	}, []string{"outcome"})

	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "log_receiver_http_requests_total",
		Help: "Total number of HTTP requests processed",
	}, []string{"status", "method"})

	SinkWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "log_receiver_sink_write_duration_seconds",
		Help:    "Time taken to write an accepted message to the output sinks",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
