// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package bus implements the in-process change notification channel.
//
// Every catalog mutation publishes a typed Change; the scheduler loop
// and each viewer connection subscribe. The bus is intentionally lossy:
// each subscriber has a small bounded buffer, and a subscriber that
// falls behind gets a lag error instead of the dropped messages.
// Correctness never depends on seeing every Change, because subscribers
// react by re-reading live catalog state, not by applying deltas.
package bus
