// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package store

import (
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vitrine-io/vitrine/internal/bus"
	"github.com/vitrine-io/vitrine/internal/logging"
	"github.com/vitrine-io/vitrine/internal/metrics"
	"github.com/vitrine-io/vitrine/internal/models"
	"github.com/vitrine-io/vitrine/internal/schedule"
)

// contentKey is the single key under which the whole catalog document
// lives in Badger.
var contentKey = []byte("catalog/content")

// Store owns the catalog. All access goes through it: reads under a
// shared lock, mutations under an exclusive lock followed by a full
// document write to Badger and a change publication on the bus.
type Store struct {
	mu      sync.RWMutex
	content *models.Content
	db      *badger.DB
	bus     *bus.Bus
}

// Open loads the catalog document from Badger, or starts from an empty
// catalog when none is stored yet.
func Open(db *badger.DB, b *bus.Bus) (*Store, error) {
	content := models.NewContent()

	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contentKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, content)
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		logging.Info().Msg("No persisted catalog found, starting empty")
	case err != nil:
		return nil, fmt.Errorf("store: loading catalog: %w", err)
	default:
		logging.Info().
			Int("displays", len(content.Displays)).
			Int("playlists", len(content.Playlists)).
			Int("schedules", len(content.Schedules)).
			Msg("Loaded persisted catalog")
	}

	// Unmarshal leaves nil maps when the document predates an entity
	// type.
	if content.Displays == nil {
		content.Displays = make(map[uuid.UUID]models.Display)
	}
	if content.Playlists == nil {
		content.Playlists = make(map[uuid.UUID]models.Playlist)
	}
	if content.Schedules == nil {
		content.Schedules = make(map[uuid.UUID]*schedule.Schedule)
	}

	return &Store{content: content, db: db, bus: b}, nil
}

// write applies fn under the exclusive lock, persists the whole
// document, then publishes whatever change fn returned. Persistence
// failures do not roll back memory and do not suppress the change.
func (s *Store) write(fn func(*models.Content) *bus.Change) {
	s.mu.Lock()
	change := fn(s.content)
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		metrics.RecordPersistFailure()
		logging.Err(err).Msg("Persisting catalog failed, in-memory state kept")
	}

	if change != nil {
		logging.Debug().Str("kind", change.Kind.String()).Msg("Publishing change after write")
		s.bus.Publish(*change)
	}
}

func (s *Store) persist() error {
	s.mu.RLock()
	data, err := json.Marshal(s.content)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("store: encoding catalog: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(contentKey, data)
	})
	if err != nil {
		return fmt.Errorf("store: writing catalog: %w", err)
	}
	return nil
}

// View runs fn with shared access to the catalog. fn must not retain
// references into the catalog after returning.
func (s *Store) View(fn func(*models.Content)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.content)
}

// Displays returns a snapshot copy of all displays.
func (s *Store) Displays() map[uuid.UUID]models.Display {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]models.Display, len(s.content.Displays))
	for id, d := range s.content.Displays {
		out[id] = d
	}
	return out
}

// Display returns a single display by UUID.
func (s *Store) Display(id uuid.UUID) (models.Display, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.content.Displays[id]
	return d, ok
}

// Playlists returns a snapshot copy of all playlists.
func (s *Store) Playlists() map[uuid.UUID]models.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]models.Playlist, len(s.content.Playlists))
	for id, p := range s.content.Playlists {
		out[id] = p.Clone()
	}
	return out
}

// Playlist returns a deep copy of a single playlist.
func (s *Store) Playlist(id uuid.UUID) (models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.content.Playlists[id]
	if !ok {
		return models.Playlist{}, false
	}
	return p.Clone(), true
}

// Schedules returns a snapshot of all schedules as independent clones.
func (s *Store) Schedules() map[uuid.UUID]*schedule.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]*schedule.Schedule, len(s.content.Schedules))
	for id, sched := range s.content.Schedules {
		out[id] = sched.Clone()
	}
	return out
}

// Schedule returns a clone of a single schedule.
func (s *Store) Schedule(id uuid.UUID) (*schedule.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.content.Schedules[id]
	if !ok {
		return nil, false
	}
	return sched.Clone(), true
}

// DisplayRefs resolves the schedule and active playlist a display is
// currently bound to. Returns false on any referential gap.
func (s *Store) DisplayRefs(displayID uuid.UUID) (scheduleID, playlistID uuid.UUID, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.content.Displays[displayID]
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sched, ok := s.content.Schedules[d.Schedule]
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return d.Schedule, sched.ActivePlaylist(), true
}

// DisplayPlaylistItems resolves the items of the display's currently
// active playlist as a value copy. Returns false when the display, its
// schedule, or the active playlist is missing.
func (s *Store) DisplayPlaylistItems(displayID uuid.UUID) ([]models.PlaylistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.content.Displays[displayID]
	if !ok {
		return nil, false
	}
	sched, ok := s.content.Schedules[d.Schedule]
	if !ok {
		return nil, false
	}
	p, ok := s.content.Playlists[sched.ActivePlaylist()]
	if !ok {
		return nil, false
	}
	return append([]models.PlaylistItem(nil), p.Items...), true
}
