// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package schedule implements cron-driven playlist scheduling.
//
// A Schedule maps time windows to playlists through an ordered list of
// rules, each a (start cron, end cron, playlist) triple, plus a fallback
// playlist that is active whenever no rule is. Two pure operations drive
// the rest of the system:
//
//   - CurrentPlaylist(t) resolves which playlist is active at time t.
//   - NextMoment(t) finds the earliest instant after t at which the
//     active playlist changes.
//
// Cron expressions use seven fields: second, minute, hour, day of month,
// month, day of week, year.
package schedule
