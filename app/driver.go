// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"sync"
	"time"

	"github.com/vektorui/shell/platform"
)

// runLoop drives a shell against an event loop until a Destroyed
// event, an exit result or a fatal error. State is always saved before
// it returns.
func runLoop(loop platform.EventLoop, sh Shell) error {
	log := Logger()
	sched := newSchedule()
	mode := platform.WaitIndefinitely()
	for {
		events, err := loop.Next(mode)
		if err != nil {
			sh.SaveAndDestroy()
			return err
		}
		for _, e := range events {
			results, err := handleEvent(loop, sh, sched, e)
			if err != nil {
				log.Error("event handling failed", "err", err)
				sh.SaveAndDestroy()
				return err
			}
			if applyResults(loop, sh, sched, results) {
				sh.SaveAndDestroy()
				return nil
			}
		}
		mode = sched.idle(time.Now(), func(w platform.WindowID) bool {
			win := sh.Window(w)
			if win == nil {
				return false
			}
			win.RequestRedraw()
			return true
		})
	}
}

// handleEvent folds one platform event into repaint results.
func handleEvent(loop platform.EventLoop, sh Shell, sched *schedule, e platform.Event) ([]EventResult, error) {
	switch e := e.(type) {
	case platform.DestroyedEvent:
		return []EventResult{resultExit()}, nil
	case platform.RedrawRequestedEvent:
		sched.clear(e.Window)
		return sh.RunUIAndPaint(loop, e.Window), nil
	case platform.WakeReachedEvent:
		// Woke only so the idle pass can fire due schedule entries.
		return nil, nil
	case platform.UserEvent:
		if rr, ok := e.Value.(RequestRepaintEvent); ok {
			return handleRequestRepaint(sh, rr), nil
		}
		r, err := sh.OnEvent(loop, e)
		return []EventResult{r}, err
	case platform.WindowEvent:
		if sh.Window(e.Window) == nil {
			// Close/reopen race: events for a window that is gone or
			// not yet registered. Repaint in case it reappears.
			return []EventResult{repaintNext(e.Window)}, nil
		}
		r, err := sh.OnEvent(loop, e)
		return []EventResult{r}, err
	default:
		r, err := sh.OnEvent(loop, e)
		return []EventResult{r}, err
	}
}

// handleRequestRepaint applies an engine repaint request posted from
// outside the frame cycle. Requests from an older frame are stale:
// every completed frame re-declares what it needs repainted.
func handleRequestRepaint(sh Shell, rr RequestRepaintEvent) []EventResult {
	if rr.FrameNr != sh.FrameNr() {
		Logger().Debug("dropping stale repaint request",
			"viewport", rr.ID, "frame", rr.FrameNr, "current", sh.FrameNr())
		return nil
	}
	w, ok := sh.WindowID(rr.ID)
	if !ok {
		return nil
	}
	return []EventResult{repaintAt(w, rr.When)}
}

// applyResults folds results into the schedule, painting RepaintNow
// targets synchronously. It reports whether the pump should exit. A
// window is painted at most once per batch; further RepaintNow results
// degrade to an immediate schedule entry so a frame that keeps asking
// for itself cannot starve the pump.
func applyResults(loop platform.EventLoop, sh Shell, sched *schedule, results []EventResult) bool {
	painted := make(map[platform.WindowID]bool)
	for i := 0; i < len(results); i++ {
		r := results[i]
		switch r.Kind {
		case ResultWait:
		case ResultRepaintNext:
			sched.repaintAt(r.Window, time.Now())
		case ResultRepaintAt:
			sched.repaintAt(r.Window, r.At)
		case ResultRepaintNow:
			if painted[r.Window] {
				sched.repaintAt(r.Window, time.Now())
				continue
			}
			painted[r.Window] = true
			sched.clear(r.Window)
			results = append(results, sh.RunUIAndPaint(loop, r.Window)...)
		case ResultExit:
			return true
		}
	}
	return false
}

// loopCache keeps the event loop of a returned run alive so a later
// Run in the same process can reuse it. Native pumps are bound to one
// OS thread; every Run must happen on the same goroutine.
var loopCache struct {
	sync.Mutex
	loop platform.EventLoop
}

func cachedEventLoop(newLoop func() (platform.EventLoop, error)) (platform.EventLoop, error) {
	loopCache.Lock()
	defer loopCache.Unlock()
	if loopCache.loop != nil {
		return loopCache.loop, nil
	}
	loop, err := newLoop()
	if err != nil {
		return nil, err
	}
	loopCache.loop = loop
	return loop, nil
}

// runAndReturn drives the shell and propagates fatal errors to the
// caller. The event loop stays alive for reuse.
func runAndReturn(loop platform.EventLoop, sh Shell) error {
	return runLoop(loop, sh)
}

// runAndExit drives the shell to process termination: fatal errors
// panic, a clean exit terminates the process.
func runAndExit(loop platform.EventLoop, sh Shell) {
	if err := runLoop(loop, sh); err != nil {
		panic("app: event loop failed: " + err.Error())
	}
	loop.Destroy()
	osExit(0)
}

// osExit is swapped out by tests.
var osExit = exitProcess
