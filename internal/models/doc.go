// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package models defines the catalog entities: displays, playlists and
// their items, and the persisted catalog document that holds them all.
package models
