// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unsent_messages_created_total",
		Help: "Messages accepted into the archive.",
	})

	Reports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unsent_reports_total",
		Help: "Successful report operations.",
	})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unsent_store_errors_total",
		Help: "Record store failures by operation.",
	}, []string{"op"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unsent_http_requests_total",
		Help: "HTTP requests by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unsent_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ArchiveMessages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unsent_archive_messages",
		Help: "Messages in the archive at the last stats sample.",
	})

	ArchiveReported = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unsent_archive_reported_messages",
		Help: "Messages with at least one report at the last stats sample.",
	})
)
