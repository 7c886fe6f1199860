// Package metrics registers the Prometheus instruments shared across the
// service. All collectors live on the default registry and are exposed by
// the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesFetched counts log files downloaded from the blob store.
	FilesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hunajapannu",
		Name:      "files_fetched_total",
		Help:      "Log files downloaded from the blob store.",
	})

	// BytesDownloaded counts log content bytes downloaded from the blob
	// store, whether or not retrieval retained them.
	BytesDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hunajapannu",
		Name:      "bytes_downloaded_total",
		Help:      "Log content bytes downloaded from the blob store.",
	})

	// LinesDropped counts log lines discarded as undecodable.
	LinesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hunajapannu",
		Name:      "lines_dropped_total",
		Help:      "Log lines discarded because they were not valid JSON objects.",
	})

	// Findings counts attack-pattern findings by detector.
	Findings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hunajapannu",
		Name:      "findings_total",
		Help:      "Attack-pattern findings produced by the analytics engine.",
	}, []string{"detector"})

	// Requests counts HTTP requests by route and status class.
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hunajapannu",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status code.",
	}, []string{"route", "status"})

	// RequestDuration observes per-route handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hunajapannu",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP handler latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)
