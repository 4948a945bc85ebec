// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package scheduler

import (
	"context"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-io/vitrine/internal/bus"
	"github.com/vitrine-io/vitrine/internal/schedule"
	"github.com/vitrine-io/vitrine/internal/store"
)

func newFixture(t *testing.T) (*store.Store, *bus.Bus) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	st, err := store.Open(db, b)
	require.NoError(t, err)
	return st, b
}

func startScheduler(t *testing.T, st *store.Store, b *bus.Bus) *Scheduler {
	t.Helper()
	s := New(st, b)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("scheduler did not stop")
		}
	})

	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never became ready")
	}
	return s
}

func awaitScheduleChange(t *testing.T, sub *bus.Subscription, want uuid.UUID) bus.Change {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		c, err := sub.Recv(ctx)
		if err == bus.ErrLagged {
			continue
		}
		require.NoError(t, err)
		if c.Kind == bus.KindSchedule && c.Contains(want) {
			return c
		}
	}
}

func TestStartupResolvesActivePlaylists(t *testing.T) {
	st, b := newFixture(t)

	fallback := uuid.New()
	active := uuid.New()
	scheduleID := uuid.New()

	// A rule that started in the past and never ends keeps its playlist
	// active, so startup resolution must move active off the fallback.
	require.NoError(t, st.CreateSchedule(scheduleID, "office", fallback))
	require.NoError(t, st.UpdateSchedule(scheduleID, "office", fallback, []schedule.Rule{
		{Playlist: active, Start: "0 0 0 * * * *", End: "0 0 0 1 1 * 2099"},
	}))

	sub := b.Subscribe()
	defer sub.Close()

	startScheduler(t, st, b)
	awaitScheduleChange(t, sub, scheduleID)

	sched, ok := st.Schedule(scheduleID)
	require.True(t, ok)
	assert.Equal(t, active, sched.ActivePlaylist())
}

func TestRuleEditMidSleepResolvesImmediately(t *testing.T) {
	st, b := newFixture(t)

	fallback := uuid.New()
	scheduleID := uuid.New()
	require.NoError(t, st.CreateSchedule(scheduleID, "office", fallback))

	// An anchor schedule with a far-future transition keeps the loop in
	// its interruptible sleep rather than the no-moments wait.
	anchorID := uuid.New()
	require.NoError(t, st.CreateSchedule(anchorID, "anchor", uuid.New()))
	require.NoError(t, st.UpdateSchedule(anchorID, "anchor", uuid.New(), []schedule.Rule{
		{Playlist: uuid.New(), Start: "0 0 0 1 1 * 2099", End: "0 0 1 1 1 * 2099"},
	}))

	startScheduler(t, st, b)

	sub := b.Subscribe()
	defer sub.Close()

	// The edit publishes ScheduleInput; the scheduler must respond with
	// a resolved Schedule change without waiting for any cron deadline.
	active := uuid.New()
	require.NoError(t, st.UpdateSchedule(scheduleID, "office", fallback, []schedule.Rule{
		{Playlist: active, Start: "0 0 0 * * * *", End: "0 0 0 1 1 * 2099"},
	}))

	awaitScheduleChange(t, sub, scheduleID)

	sched, ok := st.Schedule(scheduleID)
	require.True(t, ok)
	assert.Equal(t, active, sched.ActivePlaylist())
}

func TestSchedulerIgnoresUnrelatedChanges(t *testing.T) {
	st, b := newFixture(t)

	fallback := uuid.New()
	scheduleID := uuid.New()
	require.NoError(t, st.CreateSchedule(scheduleID, "office", fallback))

	startScheduler(t, st, b)

	sub := b.Subscribe()
	defer sub.Close()

	// Display and playlist changes must not produce Schedule changes.
	st.CreateDisplay(uuid.New(), "lobby", scheduleID)
	st.CreatePlaylist(uuid.New(), "default")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	for {
		c, err := sub.Recv(ctx)
		if err != nil {
			break
		}
		assert.NotEqual(t, bus.KindSchedule, c.Kind)
	}
}
