// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package schedule

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Rule is one scheduled window within a Schedule: the playlist becomes a
// candidate between firings of the start and end cron expressions.
type Rule struct {
	Playlist uuid.UUID `json:"playlist"`
	Start    string    `json:"start"`
	End      string    `json:"end"`
}

// Schedule maps time windows to playlists. Rules are checked in order;
// the first active rule wins, and the fallback playlist covers every
// instant no rule claims.
//
// The active playlist is a derived field maintained by the scheduler
// loop and is not part of the serialized form.
type Schedule struct {
	name     string
	fallback uuid.UUID
	rules    []Rule
	active   uuid.UUID
}

// New builds a Schedule from its admin input form. Every cron expression
// is validated; an invalid expression fails construction. The active
// playlist starts at the fallback until the scheduler resolves it.
func New(name string, rules []Rule, fallback uuid.UUID) (*Schedule, error) {
	for _, r := range rules {
		if err := ValidateCron(r.Start); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", name, err)
		}
		if err := ValidateCron(r.End); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", name, err)
		}
	}
	return &Schedule{
		name:     name,
		fallback: fallback,
		rules:    append([]Rule(nil), rules...),
		active:   fallback,
	}, nil
}

// Name returns the schedule's display name.
func (s *Schedule) Name() string { return s.name }

// Fallback returns the playlist active whenever no rule is.
func (s *Schedule) Fallback() uuid.UUID { return s.fallback }

// Rules returns a copy of the schedule's rules in priority order.
func (s *Schedule) Rules() []Rule { return append([]Rule(nil), s.rules...) }

// HasRules reports whether the schedule has any scheduled windows beyond
// the fallback.
func (s *Schedule) HasRules() bool { return len(s.rules) > 0 }

// ActivePlaylist returns the playlist the scheduler last resolved.
func (s *Schedule) ActivePlaylist() uuid.UUID { return s.active }

// SetActivePlaylist records a resolved active playlist. Only the
// scheduler loop writes this, through the catalog store's write lock.
func (s *Schedule) SetActivePlaylist(p uuid.UUID) { s.active = p }

// Playlists returns the fallback plus every rule playlist.
func (s *Schedule) Playlists() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.rules)+1)
	for _, r := range s.rules {
		out = append(out, r.Playlist)
	}
	return append(out, s.fallback)
}

// References reports whether the schedule uses the given playlist,
// either as a rule target or as the fallback.
func (s *Schedule) References(playlist uuid.UUID) bool {
	if s.fallback == playlist {
		return true
	}
	for _, r := range s.rules {
		if r.Playlist == playlist {
			return true
		}
	}
	return false
}

// Clone returns an independent copy, including the resolved active
// playlist. Snapshots handed to readers are clones so the scheduler can
// keep mutating the stored instance.
func (s *Schedule) Clone() *Schedule {
	return &Schedule{
		name:     s.name,
		fallback: s.fallback,
		rules:    append([]Rule(nil), s.rules...),
		active:   s.active,
	}
}

// doc is the serialized form, identical to the admin input shape. The
// resolved active playlist is deliberately absent: it is recomputed on
// startup.
type doc struct {
	Name      string    `json:"name"`
	Scheduled []Rule    `json:"scheduled,omitempty"`
	Playlist  uuid.UUID `json:"playlist"`
}

// MarshalJSON serializes the schedule in its admin input shape.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(doc{
		Name:      s.name,
		Scheduled: s.rules,
		Playlist:  s.fallback,
	})
}

// UnmarshalJSON rebuilds the schedule through New, re-validating every
// cron expression.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var d doc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	built, err := New(d.Name, d.Scheduled, d.Playlist)
	if err != nil {
		return err
	}
	*s = *built
	return nil
}
