// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package models

import (
	"github.com/google/uuid"

	"github.com/vitrine-io/vitrine/internal/schedule"
)

// Content is the whole catalog: every display, playlist and schedule.
// It is persisted as one JSON document under a single key.
type Content struct {
	Displays  map[uuid.UUID]Display            `json:"displays"`
	Playlists map[uuid.UUID]Playlist           `json:"playlists"`
	Schedules map[uuid.UUID]*schedule.Schedule `json:"schedules"`
}

// NewContent returns an empty catalog with initialized maps.
func NewContent() *Content {
	return &Content{
		Displays:  make(map[uuid.UUID]Display),
		Playlists: make(map[uuid.UUID]Playlist),
		Schedules: make(map[uuid.UUID]*schedule.Schedule),
	}
}
