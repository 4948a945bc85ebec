// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-io/vitrine/internal/logging"
)

// Moment is a scheduled transition: at Time the active playlist becomes
// Playlist.
type Moment struct {
	Time     time.Time
	Playlist uuid.UUID
}

// CurrentPlaylist resolves the playlist active at the given time.
//
// Rules are scanned in priority order. A rule is active when its most
// recent start firing is strictly later than its most recent end firing,
// or when only a start firing has ever happened. A start and end firing
// at the same instant makes the rule inactive; the configuration is
// ambiguous and gets a warning. The fallback covers everything else.
func (s *Schedule) CurrentPlaylist(at time.Time) uuid.UUID {
	for _, r := range s.rules {
		lastStart, okStart := prevTick(r.Start, at)
		lastEnd, okEnd := prevTick(r.End, at)
		switch {
		case okStart && okEnd:
			if lastStart.After(lastEnd) {
				return r.Playlist
			}
			if lastStart.Equal(lastEnd) {
				logging.Warn().
					Str("schedule", s.name).
					Str("playlist", r.Playlist.String()).
					Time("at", lastStart).
					Msg("Start and end action at the same moment, treating rule as inactive")
			}
		case okStart:
			return r.Playlist
		}
	}
	return s.fallback
}

// probe state for one rule while searching for the next moment.
const (
	probeContinue = iota // candidate found but shadowed, keep searching from it
	probeMoment          // candidate changes the active playlist
	probeExhausted       // no future firings for this rule
)

type momentProbe struct {
	sched   *Schedule
	rule    Rule
	current uuid.UUID
	startIt *tickIter
	endIt   *tickIter

	state  int
	at     time.Time // timestamp of the last shadowed candidate
	moment Moment
}

// advance pulls the rule's next candidate timestamp and classifies it.
//
// A rule whose playlist is already active can only be dethroned by its
// own end firing, so only the end iterator is consumed. Otherwise the
// nearer of the next start and end firings is consumed, leaving the
// other iterator untouched.
func (p *momentProbe) advance() {
	var tick time.Time
	var ok bool

	if p.current == p.rule.Playlist {
		tick, ok = p.endIt.Next()
	} else {
		nextStart, okStart := p.startIt.Peek()
		nextEnd, okEnd := p.endIt.Peek()
		switch {
		case !okStart && !okEnd:
			ok = false
		case okStart && !okEnd:
			tick, ok = p.startIt.Next()
		case !okStart && okEnd:
			tick, ok = p.endIt.Next()
		case nextStart.Before(nextEnd):
			tick, ok = p.startIt.Next()
		case nextEnd.Before(nextStart):
			tick, ok = p.endIt.Next()
		default:
			logging.Error().
				Str("schedule", p.sched.name).
				Str("playlist", p.rule.Playlist.String()).
				Time("at", nextStart).
				Msg("Start and end fire at the same timestamp, marking rule as exhausted")
			p.state = probeExhausted
			return
		}
	}

	if !ok {
		p.state = probeExhausted
		return
	}

	playlistAtTick := p.sched.CurrentPlaylist(tick)
	if playlistAtTick != p.current {
		p.state = probeMoment
		p.moment = Moment{Time: tick, Playlist: playlistAtTick}
		return
	}
	p.state = probeContinue
	p.at = tick
}

// NextMoment returns the earliest instant strictly after from at which
// CurrentPlaylist changes value, or false when no future transition
// exists (every rule is exhausted).
func (s *Schedule) NextMoment(from time.Time) (Moment, bool) {
	if len(s.rules) == 0 {
		return Moment{}, false
	}

	current := s.CurrentPlaylist(from)
	probes := make([]*momentProbe, 0, len(s.rules))
	for _, r := range s.rules {
		probes = append(probes, &momentProbe{
			sched:   s,
			rule:    r,
			current: current,
			startIt: newTickIter(r.Start, from),
			endIt:   newTickIter(r.End, from),
			state:   probeContinue,
			at:      from,
		})
	}

	// Lowest timestamp among moments found so far. Probes whose shadowed
	// candidate already lies at or past it cannot produce anything earlier
	// and stop advancing.
	var closest time.Time
	haveClosest := false

	for {
		for _, p := range probes {
			if p.state != probeContinue {
				continue
			}
			if haveClosest && !p.at.Before(closest) {
				continue
			}
			p.advance()
			if p.state == probeMoment {
				if !haveClosest || p.moment.Time.Before(closest) {
					closest = p.moment.Time
					haveClosest = true
				}
			}
		}

		allExhausted := true
		for _, p := range probes {
			if p.state != probeExhausted {
				allExhausted = false
				break
			}
		}
		if allExhausted {
			return Moment{}, false
		}

		// Pick the probe with the lowest timestamp; rule order breaks
		// ties, so a shadowing rule beats a shadowed one at the same
		// instant. Only return when that probe holds a moment.
		var best *momentProbe
		var bestKey time.Time
		for _, p := range probes {
			var key time.Time
			switch p.state {
			case probeMoment:
				key = p.moment.Time
			case probeContinue:
				key = p.at
			default:
				continue
			}
			if best == nil || key.Before(bestKey) {
				best, bestKey = p, key
			}
		}
		if best != nil && best.state == probeMoment {
			return best.moment, true
		}
	}
}
