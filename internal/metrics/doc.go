// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package metrics defines the Prometheus collectors for the controller:
// viewer connection gauges, payload and scheduler counters, change bus
// traffic, and API request instrumentation. All collectors register via
// promauto at package load and are exposed on /metrics.
package metrics
