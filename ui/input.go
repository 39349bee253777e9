// SPDX-License-Identifier: Unlicense OR MIT

package ui

import (
	"image"
	"time"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/viewport"
)

// Response reports how the input adapter handled one platform event.
type Response struct {
	// Consumed is true when the event was used by the UI and should
	// not be forwarded elsewhere.
	Consumed bool
	// Repaint is true when the event warrants a new frame.
	Repaint bool
}

// InputState accumulates platform events for one window between
// frames and translates them into engine input. One InputState exists
// per live window; it is not safe for concurrent use, matching the
// single-threaded pump.
type InputState struct {
	pair    viewport.IDPair
	start   time.Time
	pending []InputEvent

	pointerPos image.Point
	modifiers  uint32
	focused    bool
	scale      float32
}

// NewInputState returns an adapter for the given viewport.
func NewInputState(pair viewport.IDPair) *InputState {
	return &InputState{
		pair:  pair,
		start: time.Now(),
		scale: 1,
	}
}

// Pair returns the owning viewport pair.
func (s *InputState) Pair() viewport.IDPair { return s.pair }

// SetPair updates the pair when reconciliation re-parents a viewport.
func (s *InputState) SetPair(pair viewport.IDPair) { s.pair = pair }

// OnEvent folds one platform window event into the pending input.
func (s *InputState) OnEvent(e platform.WindowEventKind) Response {
	switch e := e.(type) {
	case platform.FocusedEvent:
		s.focused = e.Focused
		s.pending = append(s.pending, e)
		return Response{Repaint: true}
	case platform.ScaleFactorChangedEvent:
		s.scale = e.Scale
		return Response{Repaint: true}
	case platform.PointerEvent:
		s.pointerPos = e.Position
		s.pending = append(s.pending, e)
		return Response{Consumed: true, Repaint: true}
	case platform.KeyEvent:
		s.modifiers = e.Modifiers
		s.pending = append(s.pending, e)
		return Response{Consumed: true, Repaint: true}
	case platform.ResizedEvent:
		// Surface handling happens in the backend; a resize still
		// needs a frame so layout can adapt.
		return Response{Repaint: true}
	default:
		return Response{}
	}
}

// OnAccessibilityAction routes an inbound accessibility action
// request into the pending input. Actions are a form of user input
// and warrant a repaint.
func (s *InputState) OnAccessibilityAction(action any) {
	s.pending = append(s.pending, action)
}

// TakeInput drains the accumulated events into an engine input for
// one frame of the given window.
func (s *InputState) TakeInput(win platform.Window) Input {
	events := s.pending
	s.pending = nil
	size := win.InnerSize()
	scale := s.scale
	if scale <= 0 {
		scale = win.ScaleFactor()
	}
	return Input{
		Pair:           s.pair,
		Time:           time.Since(s.start).Seconds(),
		ScreenRect:     image.Rectangle{Max: size},
		PixelsPerPoint: scale,
		Events:         events,
		Focused:        s.focused,
	}
}
