// SPDX-License-Identifier: Unlicense OR MIT

package platform

import "image"

// Event is a raw event from the native window system. The concrete
// types below are the full set the shell handles.
type Event interface {
	implsEvent()
}

// ResumedEvent is delivered once at startup on all platforms, and
// again after a SuspendedEvent on platforms that background
// applications. Graphics surfaces may only exist between a Resumed
// and the next Suspended.
type ResumedEvent struct{}

// SuspendedEvent tells the shell to drop window-bound graphics
// resources while keeping all other state.
type SuspendedEvent struct{}

// DestroyedEvent is the pump's final event; the loop is gone.
type DestroyedEvent struct{}

// RedrawRequestedEvent asks for a window to be repainted.
type RedrawRequestedEvent struct {
	Window WindowID
}

// WakeReachedEvent reports that a WaitUntil deadline fired with no
// other event pending.
type WakeReachedEvent struct{}

// UserEvent carries a value injected with EventLoop.Post.
type UserEvent struct {
	Value any
}

// WindowEvent wraps a per-window event.
type WindowEvent struct {
	Window WindowID
	Inner  WindowEventKind
}

// WindowEventKind is the per-window event payload.
type WindowEventKind interface {
	implsWindowEvent()
}

// ResizedEvent reports a new inner size in pixels. A zero width or
// height signals minimization on some platforms and must not cause
// surface reallocation.
type ResizedEvent struct {
	Size image.Point
}

// ScaleFactorChangedEvent reports a DPI change along with the new
// suggested inner size.
type ScaleFactorChangedEvent struct {
	Scale float32
	Size  image.Point
}

// CloseRequestedEvent reports the user asked to close the window.
type CloseRequestedEvent struct{}

// FocusedEvent reports a focus gain or loss.
type FocusedEvent struct {
	Focused bool
}

// PointerEvent is any pointer move, button or scroll event.
type PointerEvent struct {
	Position image.Point
	Buttons  uint32
	Scroll   image.Point
	Kind     PointerKind
}

// PointerKind discriminates pointer events.
type PointerKind uint8

const (
	PointerMove PointerKind = iota
	PointerPress
	PointerRelease
	PointerScroll
	PointerEnter
	PointerLeave
)

// KeyEvent is a raw key press or release.
type KeyEvent struct {
	Code      uint32
	Rune      rune
	Pressed   bool
	Modifiers uint32
}

// Key modifier bits.
const (
	ModShift uint32 = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (ResumedEvent) implsEvent()         {}
func (SuspendedEvent) implsEvent()       {}
func (DestroyedEvent) implsEvent()       {}
func (RedrawRequestedEvent) implsEvent() {}
func (WakeReachedEvent) implsEvent()     {}
func (UserEvent) implsEvent()            {}
func (WindowEvent) implsEvent()          {}

func (ResizedEvent) implsWindowEvent()            {}
func (ScaleFactorChangedEvent) implsWindowEvent() {}
func (CloseRequestedEvent) implsWindowEvent()     {}
func (FocusedEvent) implsWindowEvent()            {}
func (PointerEvent) implsWindowEvent()            {}
func (KeyEvent) implsWindowEvent()                {}
