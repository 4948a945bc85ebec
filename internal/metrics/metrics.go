// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Viewer connections.

	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vitrine_viewer_connections_active",
		Help: "Number of currently connected viewers",
	})

	connectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrine_viewer_connections_total",
		Help: "Total viewer connections accepted",
	})

	payloadsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrine_viewer_payloads_sent_total",
		Help: "Display payloads pushed to viewers, by item kind",
	}, []string{"kind"})

	heartbeatFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrine_viewer_heartbeat_failures_total",
		Help: "Connections torn down by heartbeat timeouts or errors",
	})

	// Scheduler.

	schedulerTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrine_scheduler_transitions_total",
		Help: "Schedule active-playlist transitions applied",
	})

	// Change bus.

	changesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrine_changes_published_total",
		Help: "Change notifications delivered to subscribers, by kind",
	}, []string{"kind"})

	changesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrine_changes_dropped_total",
		Help: "Change notifications dropped due to slow subscribers, by kind",
	}, []string{"kind"})

	// Catalog persistence.

	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrine_catalog_persist_failures_total",
		Help: "Failed writes of the catalog document to the key-value store",
	})

	// Admin API.

	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrine_api_requests_total",
		Help: "Admin API requests, by method, path and status code",
	}, []string{"method", "path", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vitrine_api_request_duration_seconds",
		Help:    "Admin API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	apiActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vitrine_api_requests_active",
		Help: "Admin API requests currently in flight",
	})
)

// TrackConnection adjusts the live viewer gauge; pass true on connect,
// false on teardown.
func TrackConnection(open bool) {
	if open {
		activeConnections.Inc()
		connectionsTotal.Inc()
	} else {
		activeConnections.Dec()
	}
}

// RecordPayloadSent counts one display payload pushed to a viewer.
func RecordPayloadSent(kind string) {
	payloadsSent.WithLabelValues(kind).Inc()
}

// RecordHeartbeatFailure counts a heartbeat-driven teardown.
func RecordHeartbeatFailure() {
	heartbeatFailures.Inc()
}

// RecordSchedulerTransitions counts applied active-playlist updates.
func RecordSchedulerTransitions(n int) {
	schedulerTransitions.Add(float64(n))
}

// RecordChangePublished counts a change delivered to one subscriber.
func RecordChangePublished(kind string) {
	changesPublished.WithLabelValues(kind).Inc()
}

// RecordChangeDropped counts a change dropped for one slow subscriber.
func RecordChangeDropped(kind string) {
	changesDropped.WithLabelValues(kind).Inc()
}

// RecordPersistFailure counts a failed catalog write to the KV store.
func RecordPersistFailure() {
	persistFailures.Inc()
}

// TrackActiveRequest adjusts the in-flight API request gauge.
func TrackActiveRequest(start bool) {
	if start {
		apiActiveRequests.Inc()
	} else {
		apiActiveRequests.Dec()
	}
}

// RecordAPIRequest records one finished admin API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(method, path, status).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
