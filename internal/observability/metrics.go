// Package observability exposes prometheus metrics for the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courtmate",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	activitiesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtmate",
		Subsystem: "activities",
		Name:      "created_total",
		Help:      "Number of activities created.",
	})

	joins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtmate",
		Subsystem: "activities",
		Name:      "join_attempts_total",
		Help:      "Join attempts by outcome.",
	}, []string{"outcome"})

	sharesSettled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtmate",
		Subsystem: "expenses",
		Name:      "shares_settled_total",
		Help:      "Number of expense shares settled.",
	})
)

func init() {
	prometheus.MustRegister(requestDuration, activitiesCreated, joins, sharesSettled)
}

// ObserveRequest records one HTTP request.
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

// RecordActivityCreated bumps the created-activities counter.
func RecordActivityCreated() {
	activitiesCreated.Inc()
}

// RecordJoin records a join attempt. outcome is "ok", "conflict", or "error".
func RecordJoin(outcome string) {
	joins.WithLabelValues(outcome).Inc()
}

// RecordShareSettled bumps the settled-shares counter.
func RecordShareSettled() {
	sharesSettled.Inc()
}
