// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"testing"
	"time"

	"github.com/vektorui/shell/platform"
)

func noRedraw(platform.WindowID) bool { return false }

func TestScheduleKeepsEarliestInstant(t *testing.T) {
	now := time.Now()
	early := now.Add(time.Second)
	late := now.Add(time.Minute)

	orders := [][2]time.Time{{early, late}, {late, early}}
	for _, ord := range orders {
		s := newSchedule()
		s.repaintAt(1, ord[0])
		s.repaintAt(1, ord[1])
		mode := s.idle(now, noRedraw)
		if mode.Kind != platform.WaitUntil {
			t.Fatalf("mode = %v, want WaitUntil", mode.Kind)
		}
		if !mode.Deadline.Equal(early) {
			t.Errorf("deadline = %v, want earliest %v", mode.Deadline, early)
		}
	}
}

func TestScheduleDueEntryRequestsRedraw(t *testing.T) {
	now := time.Now()
	s := newSchedule()
	s.repaintAt(1, now.Add(-time.Millisecond))

	var requested []platform.WindowID
	mode := s.idle(now, func(w platform.WindowID) bool {
		requested = append(requested, w)
		return true
	})
	if len(requested) != 1 || requested[0] != 1 {
		t.Errorf("requested = %v, want [1]", requested)
	}
	if mode.Kind != platform.Poll {
		t.Errorf("mode = %v, want Poll", mode.Kind)
	}
	// The entry was consumed.
	mode = s.idle(now, noRedraw)
	if mode.Kind != platform.Wait {
		t.Errorf("mode after consume = %v, want Wait", mode.Kind)
	}
}

func TestScheduleDueEntryForDeadWindowDropped(t *testing.T) {
	now := time.Now()
	s := newSchedule()
	s.repaintAt(7, now.Add(-time.Second))
	mode := s.idle(now, noRedraw)
	if mode.Kind != platform.Wait {
		t.Errorf("mode = %v, want Wait after dropping dead window", mode.Kind)
	}
}

func TestScheduleEmptyWaitsIndefinitely(t *testing.T) {
	s := newSchedule()
	mode := s.idle(time.Now(), noRedraw)
	if mode.Kind != platform.Wait {
		t.Errorf("mode = %v, want Wait", mode.Kind)
	}
}

func TestScheduleFarFutureDegradesToWait(t *testing.T) {
	s := newSchedule()
	// Far enough that the remaining duration saturates.
	s.repaintAt(1, time.Unix(1<<50, 0))
	mode := s.idle(time.Now(), noRedraw)
	if mode.Kind != platform.Wait {
		t.Errorf("mode = %v, want Wait for unrepresentable delay", mode.Kind)
	}
}

func TestScheduleClearRemovesEntry(t *testing.T) {
	now := time.Now()
	s := newSchedule()
	s.repaintAt(1, now.Add(time.Second))
	s.clear(1)
	mode := s.idle(now, noRedraw)
	if mode.Kind != platform.Wait {
		t.Errorf("mode = %v, want Wait after clear", mode.Kind)
	}
}
