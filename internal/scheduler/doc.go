// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package scheduler runs the single long-lived loop that keeps every
// schedule's active playlist current. It resolves all schedules on
// startup, then repeatedly sleeps until the earliest upcoming
// transition, interruptibly: a rule edit re-resolves the affected
// schedules immediately instead of waiting out the sleep.
//
// The loop is the sole producer of the Schedule change variant, which
// is what viewer connections restart on.
package scheduler
