// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

var cronChecker = gronx.New()

// ValidateCron reports whether expr is a well-formed seven-field cron
// expression (second, minute, hour, day of month, month, day of week, year).
func ValidateCron(expr string) error {
	if len(strings.Fields(expr)) != 7 {
		return fmt.Errorf("cron expression %q must have exactly 7 fields", expr)
	}
	if !cronChecker.IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q", expr)
	}
	return nil
}

// prevTick returns the latest firing of expr at or before at.
// The reference time itself counts when it matches the expression.
func prevTick(expr string, at time.Time) (time.Time, bool) {
	tick, err := gronx.PrevTickBefore(expr, at, true)
	if err != nil {
		return time.Time{}, false
	}
	return tick, true
}

// tickIter walks the firing times of a cron expression strictly after a
// reference time, one tick at a time. Peek memoizes the upcoming tick so
// the iterator can be inspected without consuming it.
type tickIter struct {
	expr    string
	last    time.Time
	next    time.Time
	hasNext bool
	primed  bool
}

func newTickIter(expr string, from time.Time) *tickIter {
	return &tickIter{expr: expr, last: from}
}

func (it *tickIter) Peek() (time.Time, bool) {
	if !it.primed {
		next, err := gronx.NextTickAfter(it.expr, it.last, false)
		// gronx can answer with the reference time itself when a
		// year-pinned expression has no later firing. A tick that does
		// not move forward means the expression is exhausted.
		it.hasNext = err == nil && next.After(it.last)
		it.next = next
		it.primed = true
	}
	return it.next, it.hasNext
}

func (it *tickIter) Next() (time.Time, bool) {
	tick, ok := it.Peek()
	if ok {
		it.last = tick
		it.primed = false
	}
	return tick, ok
}
