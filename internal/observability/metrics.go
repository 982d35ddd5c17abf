package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PushesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "device_pushes_total",
		Help:      "Total number of POST requests received from access-control devices",
	})

	MalformedPushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "malformed_pushes_total",
		Help:      "Device pushes that could not be parsed as JSON",
	})

	EventsStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "events_stored_total",
		Help:      "Access events appended to the event store",
	})

	PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "persist_failures_total",
		Help:      "Background persistence operations that returned an error",
	}, []string{"op"})

	MergeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "summary_merges_total",
		Help:      "Daily summary merges by outcome",
	}, []string{"outcome"})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "arrival_notifications_total",
		Help:      "Arrival web-push notifications sent",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "attendance",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
