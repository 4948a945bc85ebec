// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitrine-io/vitrine/internal/bus"
	"github.com/vitrine-io/vitrine/internal/logging"
	"github.com/vitrine-io/vitrine/internal/metrics"
	"github.com/vitrine-io/vitrine/internal/schedule"
	"github.com/vitrine-io/vitrine/internal/store"
)

// Scheduler drives schedule transitions. It implements suture.Service.
type Scheduler struct {
	store *store.Store
	bus   *bus.Bus
	log   zerolog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// New returns a scheduler for the given catalog.
func New(st *store.Store, b *bus.Bus) *Scheduler {
	return &Scheduler{
		store: st,
		bus:   b,
		log:   logging.WithComponent("scheduler"),
		ready: make(chan struct{}),
	}
}

// Ready is closed once startup resolution has run; the HTTP surface
// waits on it so viewers never connect against unresolved schedules.
func (s *Scheduler) Ready() <-chan struct{} {
	return s.ready
}

// String names the service in supervisor logs.
func (s *Scheduler) String() string {
	return "scheduler"
}

// Serve runs the scheduling loop until the context is cancelled.
func (s *Scheduler) Serve(ctx context.Context) error {
	sub := s.bus.Subscribe()
	defer sub.Close()

	currentMoment := time.Now()
	s.resolveAll(currentMoment)
	s.readyOnce.Do(func() { close(s.ready) })

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		moments := s.upcomingMoments(currentMoment)
		if len(moments) == 0 {
			s.log.Info().Msg("No schedule has upcoming transitions, waiting for a rule change")
			if err := s.awaitRules(ctx, sub); err != nil {
				return err
			}
			continue
		}

		closest := moments[0].moment.Time
		for _, m := range moments[1:] {
			if m.moment.Time.Before(closest) {
				closest = m.moment.Time
			}
		}

		// Transitions tied on the closest instant fire together in one
		// batched write.
		var tied []store.Transition
		for _, m := range moments {
			if m.moment.Time.Equal(closest) {
				tied = append(tied, store.Transition{Schedule: m.schedule, Playlist: m.moment.Playlist})
			}
		}

		s.log.Info().
			Time("until", closest).
			Int("transitions", len(tied)).
			Msg("Sleeping until next scheduled transition")

		interrupted, err := s.sleepUntil(ctx, sub, closest, currentMoment)
		if err != nil {
			return err
		}
		if interrupted {
			continue
		}

		s.log.Info().Int("transitions", len(tied)).Msg("Applying scheduled transitions")
		s.store.ApplyTransitions(tied)
		metrics.RecordSchedulerTransitions(len(tied))
		currentMoment = closest
	}
}

type scheduledMoment struct {
	schedule uuid.UUID
	moment   schedule.Moment
}

// upcomingMoments snapshots all schedules and computes each one's next
// transition after the given instant.
func (s *Scheduler) upcomingMoments(after time.Time) []scheduledMoment {
	var out []scheduledMoment
	for id, sched := range s.store.Schedules() {
		m, ok := sched.NextMoment(after)
		if !ok {
			continue
		}
		out = append(out, scheduledMoment{schedule: id, moment: m})
	}
	return out
}

// resolveAll sets every schedule's active playlist to its current
// resolution in one batched write.
func (s *Scheduler) resolveAll(at time.Time) {
	schedules := s.store.Schedules()
	if len(schedules) == 0 {
		return
	}
	transitions := make([]store.Transition, 0, len(schedules))
	for id, sched := range schedules {
		transitions = append(transitions, store.Transition{
			Schedule: id,
			Playlist: sched.CurrentPlaylist(at),
		})
	}
	s.store.ApplyTransitions(transitions)
	metrics.RecordSchedulerTransitions(len(transitions))
}

// resolveSet re-resolves just the named schedules at the given instant.
// Used when an admin edits rules mid-sleep so the edit takes effect
// immediately.
func (s *Scheduler) resolveSet(ids map[uuid.UUID]struct{}, at time.Time) {
	transitions := make([]store.Transition, 0, len(ids))
	for id := range ids {
		sched, ok := s.store.Schedule(id)
		if !ok {
			continue
		}
		transitions = append(transitions, store.Transition{
			Schedule: id,
			Playlist: sched.CurrentPlaylist(at),
		})
	}
	s.store.ApplyTransitions(transitions)
	metrics.RecordSchedulerTransitions(len(transitions))
}

// awaitRules blocks until a ScheduleInput change names a schedule that
// now has rules.
func (s *Scheduler) awaitRules(ctx context.Context, sub *bus.Subscription) error {
	for {
		c, err := sub.Recv(ctx)
		if err != nil {
			if errors.Is(err, bus.ErrLagged) {
				continue
			}
			return err
		}
		if c.Kind != bus.KindScheduleInput {
			continue
		}
		for id := range c.UUIDs {
			if sched, ok := s.store.Schedule(id); ok && sched.HasRules() {
				s.log.Info().Msg("An updated schedule has rules, rerunning loop")
				return nil
			}
		}
	}
}

// sleepUntil waits for the deadline while watching the bus. A
// ScheduleInput arriving first re-resolves the named schedules and
// reports the sleep as interrupted. Other changes and bus lag keep the
// sleep going.
func (s *Scheduler) sleepUntil(ctx context.Context, sub *bus.Subscription, deadline, currentMoment time.Time) (interrupted bool, err error) {
	sleepCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for {
		c, recvErr := sub.Recv(sleepCtx)
		if recvErr != nil {
			switch {
			case errors.Is(recvErr, context.DeadlineExceeded) && ctx.Err() == nil:
				return false, nil
			case errors.Is(recvErr, bus.ErrLagged):
				continue
			case ctx.Err() != nil:
				return false, ctx.Err()
			default:
				return false, recvErr
			}
		}

		if c.Kind != bus.KindScheduleInput {
			continue
		}
		s.log.Info().Msg("Schedules updated mid-sleep, re-resolving and rerunning loop")
		s.resolveSet(c.UUIDs, currentMoment)
		return true, nil
	}
}
