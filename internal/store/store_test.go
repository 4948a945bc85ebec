// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package store

import (
	"context"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-io/vitrine/internal/bus"
	"github.com/vitrine-io/vitrine/internal/models"
	"github.com/vitrine-io/vitrine/internal/schedule"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestStore(t *testing.T) (*Store, *bus.Bus) {
	t.Helper()
	b := bus.New()
	s, err := Open(newTestDB(t), b)
	require.NoError(t, err)
	return s, b
}

func recvChange(t *testing.T, sub *bus.Subscription) bus.Change {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := sub.Recv(ctx)
	require.NoError(t, err)
	return c
}

func TestCreateDisplayPublishesChange(t *testing.T) {
	s, b := newTestStore(t)
	sub := b.Subscribe()
	defer sub.Close()

	id, schedID := uuid.New(), uuid.New()
	s.CreateDisplay(id, "lobby", schedID)

	d, ok := s.Display(id)
	require.True(t, ok)
	assert.Equal(t, models.Display{Name: "lobby", Schedule: schedID}, d)

	c := recvChange(t, sub)
	assert.Equal(t, bus.KindDisplay, c.Kind)
	assert.True(t, c.Contains(id))
}

func TestCreateDisplayOverridesExisting(t *testing.T) {
	s, _ := newTestStore(t)
	id := uuid.New()

	s.CreateDisplay(id, "old", uuid.New())
	newSched := uuid.New()
	s.CreateDisplay(id, "new", newSched)

	d, ok := s.Display(id)
	require.True(t, ok)
	assert.Equal(t, "new", d.Name)
	assert.Equal(t, newSched, d.Schedule)
}

func TestUpdateMissingDisplayIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	id := uuid.New()
	s.UpdateDisplay(id, "ghost", uuid.New())
	_, ok := s.Display(id)
	assert.False(t, ok)
}

func TestDeleteMissingEntitiesAreNoOps(t *testing.T) {
	s, _ := newTestStore(t)
	s.DeleteDisplay(uuid.New())
	s.DeletePlaylist(uuid.New())
	s.DeleteSchedule(uuid.New())
	assert.Empty(t, s.Displays())
	assert.Empty(t, s.Playlists())
	assert.Empty(t, s.Schedules())
}

func TestUpdateSchedulePublishesScheduleInput(t *testing.T) {
	s, b := newTestStore(t)

	id, fallback := uuid.New(), uuid.New()
	require.NoError(t, s.CreateSchedule(id, "office", fallback))

	sub := b.Subscribe()
	defer sub.Close()

	rules := []schedule.Rule{
		{Playlist: uuid.New(), Start: "0 0 10 * * * *", End: "0 0 14 * * * *"},
	}
	require.NoError(t, s.UpdateSchedule(id, "office", fallback, rules))

	c := recvChange(t, sub)
	assert.Equal(t, bus.KindScheduleInput, c.Kind)
	assert.True(t, c.Contains(id))

	sched, ok := s.Schedule(id)
	require.True(t, ok)
	assert.True(t, sched.HasRules())
}

func TestUpdateScheduleRejectsInvalidCron(t *testing.T) {
	s, _ := newTestStore(t)
	id := uuid.New()
	require.NoError(t, s.CreateSchedule(id, "office", uuid.New()))

	err := s.UpdateSchedule(id, "office", uuid.New(), []schedule.Rule{
		{Playlist: uuid.New(), Start: "bogus", End: "0 0 14 * * * *"},
	})
	assert.Error(t, err)
}

func TestCatalogSurvivesReopen(t *testing.T) {
	db := newTestDB(t)
	b := bus.New()
	s, err := Open(db, b)
	require.NoError(t, err)

	displayID, playlistID, scheduleID := uuid.New(), uuid.New(), uuid.New()
	s.CreatePlaylist(playlistID, "default")
	require.NoError(t, s.CreateSchedule(scheduleID, "office", playlistID))
	s.CreateDisplay(displayID, "lobby", scheduleID)

	reopened, err := Open(db, bus.New())
	require.NoError(t, err)

	d, ok := reopened.Display(displayID)
	require.True(t, ok)
	assert.Equal(t, "lobby", d.Name)

	p, ok := reopened.Playlist(playlistID)
	require.True(t, ok)
	assert.Equal(t, "default", p.Name)

	sched, ok := reopened.Schedule(scheduleID)
	require.True(t, ok)
	assert.Equal(t, "office", sched.Name())
	// Active playlist is not persisted; it resets to the fallback.
	assert.Equal(t, playlistID, sched.ActivePlaylist())
}

func TestOpenAcceptsLegacyDisplayEncoding(t *testing.T) {
	db := newTestDB(t)
	schedID := uuid.MustParse("8626f6e1-df7c-48d9-83c8-d7845b774ecd")
	doc := `{"displays":{"d125a360-4e41-45d5-b6c7-ea471c542510":"8626f6e1-df7c-48d9-83c8-d7845b774ecd"},"playlists":{},"schedules":{}}`
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set(contentKey, []byte(doc))
	}))

	s, err := Open(db, bus.New())
	require.NoError(t, err)

	d, ok := s.Display(uuid.MustParse("d125a360-4e41-45d5-b6c7-ea471c542510"))
	require.True(t, ok)
	assert.Equal(t, schedID, d.Schedule)
	assert.Empty(t, d.Name)
}

func TestDisplayResolution(t *testing.T) {
	s, _ := newTestStore(t)

	displayID, playlistID, scheduleID := uuid.New(), uuid.New(), uuid.New()
	s.CreatePlaylist(playlistID, "default")
	s.UpdatePlaylist(playlistID, "default", []models.PlaylistItem{
		{Kind: models.ItemText, Name: "hello", Content: "Hello", Duration: 10},
	})
	require.NoError(t, s.CreateSchedule(scheduleID, "office", playlistID))
	s.CreateDisplay(displayID, "lobby", scheduleID)

	schedID, plID, ok := s.DisplayRefs(displayID)
	require.True(t, ok)
	assert.Equal(t, scheduleID, schedID)
	assert.Equal(t, playlistID, plID)

	items, ok := s.DisplayPlaylistItems(displayID)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "hello", items[0].Name)
}

func TestDisplayResolutionReferentialGap(t *testing.T) {
	s, _ := newTestStore(t)

	// Display pointing at a schedule that does not exist.
	displayID := uuid.New()
	s.CreateDisplay(displayID, "lobby", uuid.New())

	_, _, ok := s.DisplayRefs(displayID)
	assert.False(t, ok)
	_, ok = s.DisplayPlaylistItems(displayID)
	assert.False(t, ok)

	// Unknown display.
	_, _, ok = s.DisplayRefs(uuid.New())
	assert.False(t, ok)
}

func TestApplyTransitionsBatchesOneChange(t *testing.T) {
	s, b := newTestStore(t)

	fallback := uuid.New()
	first, second := uuid.New(), uuid.New()
	require.NoError(t, s.CreateSchedule(first, "one", fallback))
	require.NoError(t, s.CreateSchedule(second, "two", fallback))

	sub := b.Subscribe()
	defer sub.Close()

	activeA, activeB := uuid.New(), uuid.New()
	s.ApplyTransitions([]Transition{
		{Schedule: first, Playlist: activeA},
		{Schedule: second, Playlist: activeB},
		{Schedule: uuid.New(), Playlist: uuid.New()}, // deleted since resolution
	})

	c := recvChange(t, sub)
	assert.Equal(t, bus.KindSchedule, c.Kind)
	assert.True(t, c.Contains(first))
	assert.True(t, c.Contains(second))
	assert.Len(t, c.UUIDs, 2)

	schedA, _ := s.Schedule(first)
	schedB, _ := s.Schedule(second)
	assert.Equal(t, activeA, schedA.ActivePlaylist())
	assert.Equal(t, activeB, schedB.ActivePlaylist())
}

func TestSnapshotsAreCopies(t *testing.T) {
	s, _ := newTestStore(t)

	scheduleID := uuid.New()
	require.NoError(t, s.CreateSchedule(scheduleID, "office", uuid.New()))

	snap, ok := s.Schedule(scheduleID)
	require.True(t, ok)
	snap.SetActivePlaylist(uuid.New())

	fresh, _ := s.Schedule(scheduleID)
	assert.NotEqual(t, snap.ActivePlaylist(), fresh.ActivePlaylist())
}
