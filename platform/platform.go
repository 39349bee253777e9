// SPDX-License-Identifier: Unlicense OR MIT

// Package platform defines the contract between the shell and the
// native window system: window creation, raw event delivery and the
// pump's wait policy. Implementations live in subpackages; the x11
// subpackage is the stock one.
package platform

import (
	"image"
	"time"

	"github.com/vektorui/shell/viewport"
)

// WindowID identifies one live OS window.
type WindowID uint64

// WaitKind selects how the pump blocks between event batches.
type WaitKind uint8

const (
	// Wait blocks indefinitely until the next event.
	Wait WaitKind = iota
	// Poll returns immediately after draining pending events.
	Poll
	// WaitUntil blocks until the next event or a deadline.
	WaitUntil
)

// WaitMode is the pump's wait policy for one iteration.
type WaitMode struct {
	Kind     WaitKind
	Deadline time.Time
}

// WaitIndefinitely, PollMode and WaitDeadline construct wait modes.
func WaitIndefinitely() WaitMode { return WaitMode{Kind: Wait} }
func PollMode() WaitMode         { return WaitMode{Kind: Poll} }
func WaitDeadline(t time.Time) WaitMode {
	return WaitMode{Kind: WaitUntil, Deadline: t}
}

// EventLoop owns the native event pump. It is driven from a single
// goroutine; only Post may be called from others.
type EventLoop interface {
	// Next blocks according to mode and returns the next batch of
	// events. A batch is never empty unless mode is Poll or the
	// deadline passed with nothing pending.
	Next(mode WaitMode) ([]Event, error)

	// CreateWindow opens a native window matching the builder as
	// closely as the platform allows.
	CreateWindow(b viewport.Builder) (Window, error)

	// Post delivers a user event to the pump from any goroutine,
	// waking it if it is blocked in Next.
	Post(value any) error

	// Destroy tears the loop down. The pump reports a Destroyed
	// event before Next stops returning.
	Destroy()
}

// DisplayHandle and WindowHandle are raw native handles used to
// create graphics surfaces. Their meaning is platform specific.
type (
	DisplayHandle uintptr
	WindowHandle  uintptr
)

// Window is one live OS window.
type Window interface {
	viewport.Window

	ID() WindowID
	InnerSize() image.Point
	OuterPosition() image.Point
	ScaleFactor() float32
	IsMinimized() bool
	IsMaximized() bool
	IsFullscreen() bool

	// RequestRedraw asks the platform to deliver a RedrawRequested
	// event for this window on the next pump iteration.
	RequestRedraw()

	// SetCursorHitTest controls whether pointer input hits the
	// window or passes through it.
	SetCursorHitTest(accept bool) error

	// Present copies a finished frame to the window. Used by
	// backends that rasterize on the CPU.
	Present(img *image.RGBA) error

	// RawHandles exposes the native display and window handles for
	// graphics surface creation.
	RawHandles() (DisplayHandle, WindowHandle)

	// Release destroys the window.
	Release()
}
