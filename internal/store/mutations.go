// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package store

import (
	"github.com/google/uuid"

	"github.com/vitrine-io/vitrine/internal/bus"
	"github.com/vitrine-io/vitrine/internal/models"
	"github.com/vitrine-io/vitrine/internal/schedule"
)

// Mutations replace whole entities, never merge fields. Creates
// override an existing entity under the same UUID; updates are no-ops
// when the entity is missing; deletes are no-ops when it is already
// gone. Naming and referential checks live in the admin layer.

// CreateDisplay inserts a display, overriding any existing one with the
// same UUID.
func (s *Store) CreateDisplay(id uuid.UUID, name string, scheduleID uuid.UUID) {
	s.write(func(c *models.Content) *bus.Change {
		c.Displays[id] = models.Display{Name: name, Schedule: scheduleID}
		change := bus.NewChange(bus.KindDisplay, id)
		return &change
	})
}

// UpdateDisplay replaces an existing display. Missing UUIDs are
// ignored.
func (s *Store) UpdateDisplay(id uuid.UUID, name string, scheduleID uuid.UUID) {
	s.write(func(c *models.Content) *bus.Change {
		if _, ok := c.Displays[id]; ok {
			c.Displays[id] = models.Display{Name: name, Schedule: scheduleID}
		}
		change := bus.NewChange(bus.KindDisplay, id)
		return &change
	})
}

// DeleteDisplay removes a display. Deleting a missing UUID is a no-op.
func (s *Store) DeleteDisplay(id uuid.UUID) {
	s.write(func(c *models.Content) *bus.Change {
		delete(c.Displays, id)
		change := bus.NewChange(bus.KindDisplay, id)
		return &change
	})
}

// CreatePlaylist inserts an empty playlist.
func (s *Store) CreatePlaylist(id uuid.UUID, name string) {
	s.write(func(c *models.Content) *bus.Change {
		c.Playlists[id] = models.Playlist{Name: name, Items: []models.PlaylistItem{}}
		change := bus.NewChange(bus.KindPlaylist, id)
		return &change
	})
}

// UpdatePlaylist replaces an existing playlist's name and items.
func (s *Store) UpdatePlaylist(id uuid.UUID, name string, items []models.PlaylistItem) {
	s.write(func(c *models.Content) *bus.Change {
		if _, ok := c.Playlists[id]; ok {
			c.Playlists[id] = models.Playlist{Name: name, Items: items}
		}
		change := bus.NewChange(bus.KindPlaylist, id)
		return &change
	})
}

// DeletePlaylist removes a playlist.
func (s *Store) DeletePlaylist(id uuid.UUID) {
	s.write(func(c *models.Content) *bus.Change {
		delete(c.Playlists, id)
		change := bus.NewChange(bus.KindPlaylist, id)
		return &change
	})
}

// CreateSchedule inserts a rule-less schedule whose active playlist is
// its fallback. Rule-less schedules need no resolution, so the change
// is already the resolved Schedule variant.
func (s *Store) CreateSchedule(id uuid.UUID, name string, fallback uuid.UUID) error {
	sched, err := schedule.New(name, nil, fallback)
	if err != nil {
		return err
	}
	s.write(func(c *models.Content) *bus.Change {
		c.Schedules[id] = sched
		change := bus.NewChange(bus.KindSchedule, id)
		return &change
	})
	return nil
}

// UpdateSchedule replaces an existing schedule's name, fallback and
// rules. It publishes ScheduleInput, not Schedule: the active playlist
// is stale until the scheduler loop re-resolves it and publishes the
// Schedule variant.
func (s *Store) UpdateSchedule(id uuid.UUID, name string, fallback uuid.UUID, rules []schedule.Rule) error {
	sched, err := schedule.New(name, rules, fallback)
	if err != nil {
		return err
	}
	s.write(func(c *models.Content) *bus.Change {
		if _, ok := c.Schedules[id]; ok {
			c.Schedules[id] = sched
		}
		change := bus.NewChange(bus.KindScheduleInput, id)
		return &change
	})
	return nil
}

// DeleteSchedule removes a schedule.
func (s *Store) DeleteSchedule(id uuid.UUID) {
	s.write(func(c *models.Content) *bus.Change {
		delete(c.Schedules, id)
		change := bus.NewChange(bus.KindSchedule, id)
		return &change
	})
}

// Transition is one resolved (schedule, active playlist) pair.
type Transition struct {
	Schedule uuid.UUID
	Playlist uuid.UUID
}

// ApplyTransitions writes a batch of resolved active playlists in one
// mutation so tied firings produce a single Schedule change. Schedules
// deleted since resolution are skipped.
func (s *Store) ApplyTransitions(transitions []Transition) {
	if len(transitions) == 0 {
		return
	}
	s.write(func(c *models.Content) *bus.Change {
		ids := make([]uuid.UUID, 0, len(transitions))
		for _, t := range transitions {
			if sched, ok := c.Schedules[t.Schedule]; ok {
				sched.SetActivePlaylist(t.Playlist)
				ids = append(ids, t.Schedule)
			}
		}
		change := bus.NewChange(bus.KindSchedule, ids...)
		return &change
	})
}
