// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package bus

import "github.com/google/uuid"

// Kind discriminates what part of the catalog a Change touches.
type Kind int

const (
	// KindDisplay: displays with the carried UUIDs were created,
	// replaced or deleted.
	KindDisplay Kind = iota

	// KindPlaylist: playlists with the carried UUIDs changed.
	KindPlaylist

	// KindScheduleInput: an admin replaced the rules of the carried
	// schedules; their active playlists have not been re-resolved yet.
	// Only the scheduler loop reacts to this variant.
	KindScheduleInput

	// KindSchedule: the carried schedules' active playlists are
	// resolved and current. The scheduler loop is the sole producer.
	KindSchedule
)

func (k Kind) String() string {
	switch k {
	case KindDisplay:
		return "display"
	case KindPlaylist:
		return "playlist"
	case KindScheduleInput:
		return "schedule_input"
	case KindSchedule:
		return "schedule"
	default:
		return "unknown"
	}
}

// Change is one catalog mutation notice.
type Change struct {
	Kind  Kind
	UUIDs map[uuid.UUID]struct{}
}

// NewChange builds a Change covering the given entity UUIDs.
func NewChange(kind Kind, ids ...uuid.UUID) Change {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Change{Kind: kind, UUIDs: set}
}

// Contains reports whether the change covers the given entity.
func (c Change) Contains(id uuid.UUID) bool {
	_, ok := c.UUIDs[id]
	return ok
}
