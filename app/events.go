// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"time"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/viewport"
)

// ResultKind discriminates EventResult values.
type ResultKind uint8

const (
	// ResultWait requests no repaint; the pump goes back to waiting.
	ResultWait ResultKind = iota
	// ResultRepaintNow repaints a window before the pump continues.
	ResultRepaintNow
	// ResultRepaintNext repaints a window on the next idle pass.
	ResultRepaintNext
	// ResultRepaintAt repaints a window no earlier than an instant.
	ResultRepaintAt
	// ResultExit shuts the application down.
	ResultExit
)

// EventResult is what handling one platform event asks of the pump.
type EventResult struct {
	Kind   ResultKind
	Window platform.WindowID
	At     time.Time
}

func resultWait() EventResult { return EventResult{Kind: ResultWait} }

func repaintNow(w platform.WindowID) EventResult {
	return EventResult{Kind: ResultRepaintNow, Window: w}
}

func repaintNext(w platform.WindowID) EventResult {
	return EventResult{Kind: ResultRepaintNext, Window: w}
}

func repaintAt(w platform.WindowID, t time.Time) EventResult {
	return EventResult{Kind: ResultRepaintAt, Window: w, At: t}
}

func resultExit() EventResult { return EventResult{Kind: ResultExit} }

// RequestRepaintEvent is posted to the event loop when the engine asks
// for a repaint outside the frame cycle. FrameNr is the frame number
// at the time of the request; the pump drops the event if further
// frames have completed since, because each frame re-declares its own
// repaint needs.
type RequestRepaintEvent struct {
	ID      viewport.ID
	When    time.Time
	FrameNr uint64
}

// AccessibilityEvent routes an assistive-technology action request to
// the viewport owning the window.
type AccessibilityEvent struct {
	Window platform.WindowID
	Action any
}
