// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"time"

	"github.com/vektorui/shell/platform"
)

// schedule tracks the earliest requested repaint instant per window.
// Requests only ever move entries earlier; painting a window clears
// its entry.
type schedule struct {
	next map[platform.WindowID]time.Time
}

func newSchedule() *schedule {
	return &schedule{next: make(map[platform.WindowID]time.Time)}
}

// repaintAt merges a repaint request, keeping the earliest instant.
func (s *schedule) repaintAt(w platform.WindowID, t time.Time) {
	if cur, ok := s.next[w]; ok && cur.Before(t) {
		return
	}
	s.next[w] = t
}

// clear removes the entry for a window, typically because it was just
// painted.
func (s *schedule) clear(w platform.WindowID) {
	delete(s.next, w)
}

// idle runs at the end of a pump iteration. Entries that are due get a
// native redraw via request; entries whose window is gone are dropped.
// The returned mode is Poll if any redraw was requested, WaitUntil the
// earliest remaining instant otherwise, or an indefinite wait when the
// schedule is empty or the remaining delay cannot be represented.
func (s *schedule) idle(now time.Time, request func(platform.WindowID) bool) platform.WaitMode {
	var (
		polled  bool
		nextDue time.Time
		haveDue bool
	)
	for w, t := range s.next {
		if t.After(now) {
			if !haveDue || t.Before(nextDue) {
				nextDue = t
				haveDue = true
			}
			continue
		}
		delete(s.next, w)
		if request(w) {
			polled = true
		}
	}
	if polled {
		return platform.PollMode()
	}
	if !haveDue {
		return platform.WaitIndefinitely()
	}
	// A deadline too far in the future to subtract from now overflows
	// time.Duration; degrade to an indefinite wait, any event will
	// re-derive the schedule.
	if nextDue.Sub(now) == time.Duration(1<<63-1) {
		return platform.WaitIndefinitely()
	}
	return platform.WaitDeadline(nextDue)
}
